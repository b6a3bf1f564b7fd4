// Command threat-baseline runs the token validator over a corpus of captured
// inputs and diffs the findings against a committed baseline allowlist. CI
// fails when a corpus entry starts tripping a detector it did not trip
// before, which catches accidental loosening or tightening of the threat
// regexes and entropy thresholds.
//
// Findings never contain the raw input: each line is identified by a SHA-256
// fingerprint prefix so hostile payloads are not echoed into CI logs.
package main

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/rodaquino-OMNI/authcore/internal/rate"
	"github.com/rodaquino-OMNI/authcore/token"
)

func main() {
	var (
		corpusPath   string
		baselinePath string
		failStale    bool
	)

	flag.StringVar(&corpusPath, "corpus", "", "path to input corpus (one candidate value per line)")
	flag.StringVar(&baselinePath, "baseline", "", "path to baseline allowlist of expected findings")
	flag.BoolVar(&failStale, "fail-stale", false, "fail when baseline entries no longer occur")
	flag.Parse()

	if corpusPath == "" || baselinePath == "" {
		fmt.Fprintln(os.Stderr, "-corpus and -baseline are required")
		os.Exit(2)
	}

	current, scanned, err := scanCorpus(corpusPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "scan corpus: %v\n", err)
		os.Exit(1)
	}

	baseline, err := loadBaseline(baselinePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load baseline: %v\n", err)
		os.Exit(1)
	}

	unknown := diffFindings(current, baseline)
	stale := staleBaselines(current, baseline)

	hasFailure := false

	if len(unknown) > 0 {
		hasFailure = true
		fmt.Fprintln(os.Stderr, "new validator findings (not in baseline):")
		for _, finding := range unknown {
			fmt.Fprintf(os.Stderr, "  - %s\n", finding)
		}
	}

	if len(stale) > 0 {
		fmt.Fprintln(os.Stdout, "stale baseline entries (safe to remove):")
		for _, finding := range stale {
			fmt.Fprintf(os.Stdout, "  - %s\n", finding)
		}
		if failStale {
			hasFailure = true
		}
	}

	if hasFailure {
		os.Exit(1)
	}

	fmt.Printf("threat baseline check passed (inputs=%d, findings=%d)\n", scanned, len(current))
}

// scanCorpus validates every corpus line and fingerprints the ones that
// fail. The fingerprint pairs a digest of the input with the rejection kind,
// so a changed verdict for the same input shows up as both a new finding and
// a stale baseline entry.
func scanCorpus(path string) ([]string, int, error) {
	// #nosec G304 -- corpus path is controlled by CI workflow inputs.
	file, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer file.Close()

	validator := token.NewValidator(token.Config{
		MinLength:        8,
		MaxLength:        4096,
		MinEntropyBits:   3.0,
		MinEntropySample: 16,
		RateLimit:        rate.Config{MaxAttempts: 1 << 30, Window: time.Hour},
	})

	unique := map[string]struct{}{}
	scanned := 0

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		scanned++

		verdict := validator.Validate(line, "baseline")
		if verdict.Valid {
			continue
		}

		unique[fmt.Sprintf("%s|%s", fingerprint(line), verdict.Error)] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, err
	}

	return sortedKeys(unique), scanned, nil
}

func fingerprint(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:6])
}

func loadBaseline(path string) (map[string]struct{}, error) {
	// #nosec G304 -- baseline path is controlled by CI workflow inputs.
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	out := map[string]struct{}{}
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if idx := strings.IndexByte(line, '#'); idx >= 0 {
			line = line[:idx]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		out[line] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func diffFindings(current []string, baseline map[string]struct{}) []string {
	var out []string
	for _, finding := range current {
		if _, ok := baseline[finding]; !ok {
			out = append(out, finding)
		}
	}
	sort.Strings(out)
	return out
}

func staleBaselines(current []string, baseline map[string]struct{}) []string {
	currentSet := map[string]struct{}{}
	for _, finding := range current {
		currentSet[finding] = struct{}{}
	}

	var out []string
	for finding := range baseline {
		if _, ok := currentSet[finding]; !ok {
			out = append(out, finding)
		}
	}
	sort.Strings(out)
	return out
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for key := range m {
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}
