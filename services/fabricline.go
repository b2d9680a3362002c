package services

import (
	"log"
	"sort"
	"strings"
	"unicode"

	"github.com/xuri/excelize/v2"
)

// Mode selects the header-row convention of the cost-base workbook.
type Mode string

const (
	ModeFactory  Mode = "Fábrica"
	ModeSupplier Mode = "Fornecedor"
)

// factoryHeaderRows maps the known factory sheet names to their 1-based
// header row. Sheets outside this map use defaultHeaderRow.
var factoryHeaderRows = map[string]int{
	"Poltrona":         57,
	"Namoradeira-Sofá": 24,
	"Puff-Banqueta":    40,
	"Cadeira":          25,
}

const defaultHeaderRow = 2

// HeaderRow returns the 1-based header row for a sheet under this mode.
func (m Mode) HeaderRow(sheet string) int {
	if m == ModeFactory {
		if row, ok := factoryHeaderRows[sheet]; ok {
			return row
		}
	}
	return defaultHeaderRow
}

// FabricLineSet is the set of single-letter fabric-line codes (TC)
// observed in a cost-base workbook, with per-letter frequency. It is an
// immutable value built once per load and threaded into every lookup.
type FabricLineSet struct {
	letters   []string
	frequency map[string]int
}

// NewFabricLineSet builds a set from a letter → occurrence-count map.
func NewFabricLineSet(frequency map[string]int) FabricLineSet {
	letters := make([]string, 0, len(frequency))
	for letter := range frequency {
		letters = append(letters, letter)
	}
	sort.Strings(letters)
	return FabricLineSet{letters: letters, frequency: frequency}
}

// Contains reports whether the letter was observed at least once.
func (s FabricLineSet) Contains(letter string) bool {
	return s.frequency[letter] > 0
}

// Frequency returns how many times the letter was observed across all
// sheets.
func (s FabricLineSet) Frequency(letter string) int {
	return s.frequency[letter]
}

// Letters returns the detected letters in sorted order.
func (s FabricLineSet) Letters() []string {
	out := make([]string, len(s.letters))
	copy(out, s.letters)
	return out
}

// Empty reports whether no fabric line was detected.
func (s FabricLineSet) Empty() bool {
	return len(s.letters) == 0
}

// String renders the detected letters as "A, B, C" for log and detail
// messages.
func (s FabricLineSet) String() string {
	return strings.Join(s.letters, ", ")
}

// DetectFabricLines scans every sheet's "TC" column and collects the
// single-letter codes actually present. Sheets without a TC column, or
// shorter than their header row, are skipped with a warning. An empty
// result means the workbook has no usable fabric line at all; callers
// treat that as fatal.
func DetectFabricLines(f *excelize.File, mode Mode) FabricLineSet {
	frequency := map[string]int{}

	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			log.Printf("fabricline: aba %q ilegível: %v", sheet, err)
			continue
		}

		headerRow := mode.HeaderRow(sheet)
		if len(rows) < headerRow {
			continue
		}

		tcCol := -1
		for i, cell := range rows[headerRow-1] {
			if strings.TrimSpace(cell) == "TC" {
				tcCol = i
				break
			}
		}
		if tcCol < 0 {
			log.Printf("fabricline: aba %q sem coluna TC, ignorando", sheet)
			continue
		}

		for _, row := range rows[headerRow:] {
			tc := strings.ToUpper(strings.TrimSpace(cellAt(row, tcCol)))
			if isSingleLetter(tc) {
				frequency[tc]++
			}
		}
	}

	return NewFabricLineSet(frequency)
}

func isSingleLetter(s string) bool {
	runes := []rune(s)
	return len(runes) == 1 && unicode.IsLetter(runes[0])
}
