package dedupe

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"
)

// DefaultThreshold is the minimum token-set ratio for two full names to
// be considered the same person.
const DefaultThreshold = 90

// Person is one row of a name dataset. MiddleName may be empty.
type Person struct {
	FirstName  string
	MiddleName string
	LastName   string
}

// FullName joins the trimmed, lowercased name parts, skipping an empty
// middle name.
func (p Person) FullName() string {
	parts := make([]string, 0, 3)
	for _, s := range []string{p.FirstName, p.MiddleName, p.LastName} {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

// Detect identifies groups of duplicate or misspelled names by fuzzy
// token-set matching of full names. Each returned group holds indexes
// into people; only groups with more than one member are reported. A row
// claimed by an earlier group is not considered again.
func Detect(people []Person, threshold int) [][]int {
	names := make([]string, len(people))
	for i, p := range people {
		names[i] = p.FullName()
	}

	var groups [][]int
	seen := make(map[int]bool)
	for i := range people {
		if seen[i] {
			continue
		}
		group := []int{i}
		for j := i + 1; j < len(people); j++ {
			if seen[j] {
				continue
			}
			if fuzzy.TokenSetRatio(names[i], names[j]) >= threshold {
				group = append(group, j)
				seen[j] = true
			}
		}
		if len(group) > 1 {
			groups = append(groups, group)
		}
	}
	return groups
}

// ReadCSV parses a name dataset with a header containing first_name,
// middle_name, and last_name columns, in any order.
func ReadCSV(r io.Reader) ([]Person, error) {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"first_name", "last_name"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("missing required column %q", required)
		}
	}

	field := func(row []string, name string) string {
		idx, ok := cols[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return row[idx]
	}

	var people []Person
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		people = append(people, Person{
			FirstName:  field(row, "first_name"),
			MiddleName: field(row, "middle_name"),
			LastName:   field(row, "last_name"),
		})
	}
	return people, nil
}
