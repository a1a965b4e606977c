package pipeline

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/TheRakeshPurohit/litex/internal/features"
)

// fingerprint hashes everything that feeds one object: the source bytes,
// the define list and the toolchain identity. If the fingerprint matches
// the stored stamp and the object still exists, the compile is skipped.
func fingerprint(source []byte, defines []features.Define, toolchainID string) string {
	h := sha256.New()
	h.Write(source)
	for _, d := range defines {
		fmt.Fprintf(h, "\x00%s=%s", d.Name, d.Value)
	}
	fmt.Fprintf(h, "\x00%s", toolchainID)
	return hex.EncodeToString(h.Sum(nil))
}

// depFingerprint extends an object's base fingerprint with the contents of
// the headers recorded in the compiler's dep file, so editing an included
// header invalidates the object. An absent or empty dep file leaves the base
// fingerprint standing alone; a header that has since disappeared still
// changes the result and forces a rebuild.
func depFingerprint(base, depFile string) string {
	deps, err := parseDepFile(depFile)
	if err != nil || len(deps) == 0 {
		return base
	}

	h := sha256.New()
	fmt.Fprintf(h, "%s", base)
	for _, dep := range deps {
		content, err := os.ReadFile(dep)
		if err != nil {
			fmt.Fprintf(h, "\x00%s!", dep)
			continue
		}
		fmt.Fprintf(h, "\x00%s=", dep)
		h.Write(content)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// parseDepFile reads the make-style rule -MMD emits: "object: source
// headers...", possibly spanning lines with backslash continuations.
func parseDepFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	text := strings.ReplaceAll(string(data), "\\\r\n", " ")
	text = strings.ReplaceAll(text, "\\\n", " ")
	if i := strings.IndexByte(text, ':'); i >= 0 {
		text = text[i+1:]
	}
	return strings.Fields(text), nil
}

// readStamp returns the stored fingerprint, or "" when absent or unreadable.
// An unreadable stamp just forces a rebuild.
func readStamp(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return string(data)
}

func writeStamp(path, fp string) error {
	return os.WriteFile(path, []byte(fp), 0o644)
}
