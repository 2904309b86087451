// Package gazetteer holds the read-only reference data of U.S. place names
// used to correct parsed city names.
package gazetteer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/address-normalizer/internal/normalizer"
)

// ErrEmptyGazetteer is returned when the dataset has no usable rows.
var ErrEmptyGazetteer = errors.New("gazetteer: dataset is empty")

// Row is one (city, state) entry of the source dataset.
type Row struct {
	City      string
	StateCode string
	StateName string
}

// City is a gazetteer entry with its precomputed comparison key.
type City struct {
	Name  string
	State string
	Key   string
}

// Stats summarises a loaded gazetteer.
type Stats struct {
	States int `json:"states"`
	Cities int `json:"cities"`
}

// Gazetteer is immutable after New returns; all accessors are safe for
// concurrent use without locking.
type Gazetteer struct {
	byState     map[string][]City
	nameToCode  map[string]string
	codeToName  map[string]string
	all         []City
	sortedCodes []string
}

// New builds a gazetteer from rows. Cities keep row order within their
// state and in the flat list.
func New(rows []Row) (*Gazetteer, error) {
	g := &Gazetteer{
		byState:    make(map[string][]City),
		nameToCode: make(map[string]string),
		codeToName: make(map[string]string),
	}

	for _, r := range rows {
		name := strings.TrimSpace(r.City)
		code := strings.ToUpper(strings.TrimSpace(r.StateCode))
		if name == "" || code == "" {
			continue
		}

		c := City{Name: name, State: code, Key: normalizer.FoldKey(name)}
		g.byState[code] = append(g.byState[code], c)
		g.all = append(g.all, c)

		if stateName := strings.TrimSpace(r.StateName); stateName != "" {
			g.nameToCode[strings.ToUpper(stateName)] = code
			g.codeToName[code] = stateName
		}
	}

	if len(g.all) == 0 {
		return nil, ErrEmptyGazetteer
	}

	for code := range g.byState {
		g.sortedCodes = append(g.sortedCodes, code)
	}
	sort.Strings(g.sortedCodes)

	return g, nil
}

// Load reads a uscities.csv-shaped file from disk.
func Load(path string) (*Gazetteer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("gazetteer: open %s: %w", path, err)
	}
	defer f.Close()

	return Parse(f)
}

// Parse reads CSV with a header row containing at least city, state_id and
// state_name. Other columns are ignored.
func Parse(r io.Reader) (*Gazetteer, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyGazetteer
		}
		return nil, fmt.Errorf("gazetteer: read header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	cityIdx, ok1 := cols["city"]
	codeIdx, ok2 := cols["state_id"]
	if !ok1 || !ok2 {
		return nil, fmt.Errorf("gazetteer: header must contain city and state_id, got %v", header)
	}
	nameIdx, hasName := cols["state_name"]

	var rows []Row
	line := 1
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("gazetteer: line %d: %w", line, err)
		}
		if cityIdx >= len(rec) || codeIdx >= len(rec) {
			continue
		}

		row := Row{City: rec[cityIdx], StateCode: rec[codeIdx]}
		if hasName && nameIdx < len(rec) {
			row.StateName = rec[nameIdx]
		}
		rows = append(rows, row)
	}

	return New(rows)
}

// Cities returns the ordered city list of a state code, or nil. The slice
// shares the gazetteer's storage and must not be modified; appending to it
// reallocates.
func (g *Gazetteer) Cities(code string) []City {
	return clip(g.byState[code])
}

// AllCities returns every city across all states in dataset order. Same
// sharing rules as Cities.
func (g *Gazetteer) AllCities() []City {
	return clip(g.all)
}

// HasState reports whether code is a state code in the dataset.
func (g *Gazetteer) HasState(code string) bool {
	_, ok := g.byState[code]
	return ok
}

// StateCode translates an upper-cased full state name to its code.
func (g *Gazetteer) StateCode(name string) (string, bool) {
	code, ok := g.nameToCode[name]
	return code, ok
}

// StateName returns the full name recorded for a state code.
func (g *Gazetteer) StateName(code string) string {
	return g.codeToName[code]
}

// States returns all state codes, sorted. Same sharing rules as Cities.
func (g *Gazetteer) States() []string {
	return g.sortedCodes[:len(g.sortedCodes):len(g.sortedCodes)]
}

// Stats returns state and city counts.
func (g *Gazetteer) Stats() Stats {
	return Stats{States: len(g.byState), Cities: len(g.all)}
}

func clip(s []City) []City {
	if s == nil {
		return nil
	}
	return s[:len(s):len(s)]
}
