package migration

import "slices"

// ConflictDirectory is the directory within the source which conflicting
// files are moved into. It is never migrated itself.
const ConflictDirectory = "conflict"

// EssentialFileNames are the files of a collection which are migrated ahead
// of all other user data, and are skipped when enumerating the source.
var EssentialFileNames = []string{
	"collection.anki2",
	"collection.anki2-journal",
	"collection.media.db",
	"collection.media.ad.db2",
	"collection.media.ad.db2-journal",
	"collection.log",
	".nomedia",
}

// IsEssentialFileName returns whether name is one of [EssentialFileNames].
func IsEssentialFileName(name string) bool {
	return slices.Contains(EssentialFileNames, name)
}

// topLevelPriority orders the top level entries so that the ones most
// likely to conflict or to be missed by the user are migrated first.
func topLevelPriority(name string) int {
	switch name {
	case "card.html":
		return -3
	case "fonts":
		return -2
	case "backups":
		return -1
	default:
		return 0
	}
}
