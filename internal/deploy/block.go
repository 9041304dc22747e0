package deploy

import (
	"fmt"
	"strings"

	"github.com/framekit/framekit/internal/messages"
)

// Managed block markers delimiting the package-owned section of the shared
// file. Uninstall refuses to excise when either marker is duplicated.
const (
	blockStart = "# >>> framework managed"
	blockEnd   = "# <<< framework managed"
)

func managedBlock() string {
	return strings.Join([]string{
		blockStart,
		deployDirName + "/" + metaDirName + "/" + backupsDirName + "/",
		deployDirName + "/" + metaDirName + "/" + installedAtFileName,
		blockEnd,
	}, "\n") + "\n"
}

// appendManagedBlock returns content with the managed block appended, or the
// block alone when content is empty. An existing block is replaced in place.
func appendManagedBlock(content string) string {
	if strings.Contains(content, blockStart) {
		if replaced, err := replaceManagedBlock(content); err == nil {
			return replaced
		}
	}
	if content == "" {
		return managedBlock()
	}
	if !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	return content + "\n" + managedBlock()
}

func replaceManagedBlock(content string) (string, error) {
	remainder, err := exciseManagedBlock(content, "")
	if err != nil {
		return "", err
	}
	return appendManagedBlock(remainder), nil
}

// exciseManagedBlock removes the delimited section from content. It errors
// explicitly when a marker is duplicated or missing its pair rather than
// guessing, and returns the remaining content; an empty result means the
// file can be deleted.
func exciseManagedBlock(content string, path string) (string, error) {
	lines := strings.Split(content, "\n")
	startIdx, endIdx := -1, -1
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch trimmed {
		case blockStart:
			if startIdx != -1 {
				return "", fmt.Errorf(messages.UninstallMarkerDupFmt, blockStart, 2, path)
			}
			startIdx = i
		case blockEnd:
			if endIdx != -1 {
				return "", fmt.Errorf(messages.UninstallMarkerDupFmt, blockEnd, 2, path)
			}
			endIdx = i
		}
	}
	if startIdx == -1 && endIdx == -1 {
		return content, nil
	}
	if startIdx == -1 {
		return "", fmt.Errorf(messages.UninstallMarkerMissingFmt, blockStart, path)
	}
	if endIdx == -1 || endIdx < startIdx {
		return "", fmt.Errorf(messages.UninstallMarkerMissingFmt, blockEnd, path)
	}

	kept := append(append([]string{}, lines[:startIdx]...), lines[endIdx+1:]...)
	out := strings.Join(kept, "\n")
	out = strings.Trim(out, "\n")
	if strings.TrimSpace(out) == "" {
		return "", nil
	}
	return out + "\n", nil
}
