// Package diff describes how a post's content changed while it was being edited.
package diff

import "github.com/sergi/go-diff/diffmatchpatch"

var dmp *diffmatchpatch.DiffMatchPatch

func init() {
	dmp = diffmatchpatch.New()
}

// FindPatches returns the patch, in GNU diff-like text form, that turns text1 into text2.
// Identical texts produce an empty string.
func FindPatches(text1, text2 string) string {
	diffs := dmp.DiffMain(text1, text2, false)
	return dmp.PatchToText(dmp.PatchMake(diffs))
}

// Stats counts the characters inserted into and deleted from text1 to obtain text2.
func Stats(text1, text2 string) (inserted, deleted int) {
	diffs := dmp.DiffCleanupSemantic(dmp.DiffMain(text1, text2, false))
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			inserted += len([]rune(d.Text))
		case diffmatchpatch.DiffDelete:
			deleted += len([]rune(d.Text))
		}
	}
	return
}
