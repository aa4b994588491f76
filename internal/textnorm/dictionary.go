// Package textnorm cleans OCR text before it is interpreted: tokens are
// spell-corrected and capture-UI boilerplate is filtered out.
package textnorm

import (
	"bufio"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

//go:embed words.txt
var embeddedWords string

// Dictionary is an immutable set of known words with relative frequencies
type Dictionary struct {
	freq map[string]int
}

// NewDictionary builds a dictionary from word -> frequency. Keys are lower-cased.
func NewDictionary(freq map[string]int) *Dictionary {
	d := &Dictionary{freq: make(map[string]int, len(freq))}
	for w, f := range freq {
		d.freq[strings.ToLower(w)] = f
	}
	return d
}

// LoadDictionary reads one word per line, optionally followed by a count.
// Lines without a count are ranked by position: earlier lines are more frequent.
// Blank lines and lines starting with # are skipped.
func LoadDictionary(r io.Reader) (*Dictionary, error) {
	var lines [][]string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, strings.Fields(line))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read dictionary: %w", err)
	}

	d := &Dictionary{freq: make(map[string]int, len(lines))}
	for i, fields := range lines {
		word := strings.ToLower(fields[0])
		count := len(lines) - i
		if len(fields) > 1 {
			n, err := strconv.Atoi(fields[1])
			if err != nil {
				return nil, fmt.Errorf("dictionary line %d: invalid count %q", i+1, fields[1])
			}
			count = n
		}
		if _, seen := d.freq[word]; !seen {
			d.freq[word] = count
		}
	}
	return d, nil
}

// LoadDictionaryFile loads a dictionary from path
func LoadDictionaryFile(path string) (*Dictionary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dictionary: %w", err)
	}
	defer f.Close()
	return LoadDictionary(f)
}

// DefaultDictionary returns the built-in English word list
func DefaultDictionary() *Dictionary {
	d, err := LoadDictionary(strings.NewReader(embeddedWords))
	if err != nil {
		panic(fmt.Sprintf("embedded dictionary is invalid: %v", err))
	}
	return d
}

func (d *Dictionary) IsKnown(word string) bool {
	_, ok := d.freq[strings.ToLower(word)]
	return ok
}

// Frequency returns 0 for unknown words
func (d *Dictionary) Frequency(word string) int {
	return d.freq[strings.ToLower(word)]
}

func (d *Dictionary) Len() int {
	return len(d.freq)
}

// each calls fn for every word; iteration order is unspecified
func (d *Dictionary) each(fn func(word string, freq int)) {
	for w, f := range d.freq {
		fn(w, f)
	}
}
