// Package pages maps display page numbers onto original PDF pages and
// inserted blank or graph pages.
//
// Display numbers are never stored. They are positions in the sequence
// derived from the surviving original pages with every added page spliced
// in at its recorded anchor. Everything else in the viewer keys its state
// by Identifier.Key, which survives insertions and deletions unchanged.
package pages

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"inkpdf/internal/graph"
)

var (
	ErrLastPage      = errors.New("cannot delete the last remaining page")
	ErrNoPage        = errors.New("no such page")
	ErrInvalidRecord = errors.New("invalid page structure")
)

// Page types.
const (
	TypeOriginal = "original"
	TypeBlank    = "blank"
)

// Identifier names one page of the sequence.
type Identifier struct {
	Type       string        `json:"type"`
	PageNumber int           `json:"pageNumber,omitempty"`
	ID         string        `json:"id,omitempty"`
	IsGraph    bool          `json:"isGraph,omitempty"`
	Graph      *graph.Config `json:"graphConfig,omitempty"`
}

// Original returns the identifier of original page n.
func Original(n int) Identifier {
	return Identifier{Type: TypeOriginal, PageNumber: n}
}

// Key is a stable map key: "original:3" or "blank:<id>".
func (id Identifier) Key() string {
	if id.Type == TypeOriginal {
		return TypeOriginal + ":" + strconv.Itoa(id.PageNumber)
	}
	return TypeBlank + ":" + id.ID
}

// IsOriginal reports whether the page comes from the source PDF.
func (id Identifier) IsOriginal() bool { return id.Type == TypeOriginal }

func (id Identifier) String() string {
	switch {
	case id.IsOriginal():
		return fmt.Sprintf("page %d", id.PageNumber)
	case id.IsGraph:
		return "graph " + id.ID
	}
	return "blank " + id.ID
}

// ParseKey is the inverse of Identifier.Key for original pages. Blank keys
// only carry the id.
func ParseKey(key string) (Identifier, bool) {
	typ, rest, ok := strings.Cut(key, ":")
	if !ok {
		return Identifier{}, false
	}
	switch typ {
	case TypeOriginal:
		n, err := strconv.Atoi(rest)
		if err != nil || n < 1 {
			return Identifier{}, false
		}
		return Original(n), true
	case TypeBlank:
		if rest == "" {
			return Identifier{}, false
		}
		return Identifier{Type: TypeBlank, ID: rest}, true
	}
	return Identifier{}, false
}

// AddedPage is the persisted form of an inserted page.
type AddedPage struct {
	ID          string        `json:"id"`
	IsGraph     bool          `json:"isGraph,omitempty"`
	GraphConfig *graph.Config `json:"graphConfig,omitempty"`
	// InsertAfterDisplay is the number of pages preceding this one when the
	// added pages are replayed in creation order. Nil in legacy records.
	InsertAfterDisplay *int `json:"insertAfterDisplay,omitempty"`
	// InsertAfter is the original page this one follows, 0 for the front.
	InsertAfter int   `json:"insertAfter"`
	CreatedAt   int64 `json:"createdAt"`
}

func (a AddedPage) identifier() Identifier {
	id := Identifier{Type: TypeBlank, ID: a.ID, IsGraph: a.IsGraph}
	if a.GraphConfig != nil {
		cfg := a.GraphConfig.Clone()
		id.Graph = &cfg
	}
	return id
}

// Record is the pageStructure persisted with the annotations.
type Record struct {
	BlankPages   []int                `json:"blankPages"`
	DeletedPages []int                `json:"deletedPages"`
	AddedPages   map[string]AddedPage `json:"addedPages"`
	TotalPages   int                  `json:"totalPages"`
}

// Structure is the mutable page sequence of one document.
type Structure struct {
	originals int
	deleted   map[int]bool
	added     map[string]*AddedPage
	seq       int
}

// New returns the identity structure of an unedited document.
func New(originalCount int) *Structure {
	if originalCount < 1 {
		originalCount = 1
	}
	return &Structure{
		originals: originalCount,
		deleted:   make(map[int]bool),
		added:     make(map[string]*AddedPage),
	}
}

// FromRecord rebuilds a structure from its persisted record. Entries that
// do not fit the document are dropped. A record that would leave no pages
// yields an unedited structure and ErrInvalidRecord.
func FromRecord(originalCount int, rec Record) (*Structure, error) {
	s := New(originalCount)
	for _, n := range rec.DeletedPages {
		if n >= 1 && n <= s.originals {
			s.deleted[n] = true
		}
	}
	for key, a := range rec.AddedPages {
		a := a
		if a.ID == "" {
			a.ID = key
		}
		if a.GraphConfig != nil {
			cfg := a.GraphConfig.Clone()
			a.GraphConfig = &cfg
		}
		s.added[a.ID] = &a
	}
	if len(rec.AddedPages) == 0 && len(rec.BlankPages) > 0 {
		s.adoptLegacyBlanks(rec.BlankPages)
	}
	if s.TotalPages() < 1 {
		return New(originalCount), fmt.Errorf("%w: no pages left", ErrInvalidRecord)
	}
	s.rebase(s.Sequence())
	if rec.TotalPages != 0 && rec.TotalPages != s.TotalPages() {
		return s, fmt.Errorf("%w: recorded %d pages, derived %d", ErrInvalidRecord, rec.TotalPages, s.TotalPages())
	}
	return s, nil
}

// adoptLegacyBlanks turns a bare list of blank display numbers into added
// pages sitting at those positions.
func (s *Structure) adoptLegacyBlanks(displays []int) {
	ds := append([]int(nil), displays...)
	sort.Ints(ds)
	seq := s.Sequence()
	for _, d := range ds {
		pos := clamp(d-1, 0, len(seq))
		a := &AddedPage{ID: fmt.Sprintf("blank-legacy-%d", d)}
		s.added[a.ID] = a
		seq = insertAt(seq, pos, a.identifier())
	}
	s.rebase(seq)
}

// OriginalCount is the page count of the source PDF.
func (s *Structure) OriginalCount() int { return s.originals }

// TotalPages is the number of display pages.
func (s *Structure) TotalPages() int {
	return s.originals - len(s.deleted) + len(s.added)
}

// Deleted returns the deleted original page numbers in ascending order.
func (s *Structure) Deleted() []int {
	out := make([]int, 0, len(s.deleted))
	for n := range s.deleted {
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}

// Sequence returns the identifiers in display order. Entry i is display
// page i+1.
func (s *Structure) Sequence() []Identifier {
	seq := make([]Identifier, 0, s.TotalPages())
	for n := 1; n <= s.originals; n++ {
		if !s.deleted[n] {
			seq = append(seq, Original(n))
		}
	}
	for _, a := range s.replayOrder() {
		var pos int
		if a.InsertAfterDisplay != nil {
			pos = clamp(*a.InsertAfterDisplay, 0, len(seq))
		} else {
			pos = legacyPosition(seq, a.InsertAfter)
		}
		seq = insertAt(seq, pos, a.identifier())
	}
	return seq
}

// legacyPosition places a page right after the nearest surviving original
// at or before anchor.
func legacyPosition(seq []Identifier, anchor int) int {
	pos := 0
	for i, id := range seq {
		if id.IsOriginal() && id.PageNumber <= anchor {
			pos = i + 1
		}
	}
	return pos
}

func (s *Structure) replayOrder() []*AddedPage {
	out := make([]*AddedPage, 0, len(s.added))
	for _, a := range s.added {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt != out[j].CreatedAt {
			return out[i].CreatedAt < out[j].CreatedAt
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Identifier returns the page at display number d (1-based).
func (s *Structure) Identifier(d int) (Identifier, bool) {
	seq := s.Sequence()
	if d < 1 || d > len(seq) {
		return Identifier{}, false
	}
	return seq[d-1], true
}

// DisplayOf returns the display number of the page with the given key.
func (s *Structure) DisplayOf(key string) (int, bool) {
	for i, id := range s.Sequence() {
		if id.Key() == key {
			return i + 1, true
		}
	}
	return 0, false
}

// InsertBlank adds a blank page after display page afterDisplay (0 puts it
// first) and returns its identifier. The new page is display afterDisplay+1.
func (s *Structure) InsertBlank(afterDisplay int, at time.Time) Identifier {
	return s.insert(afterDisplay, at, nil)
}

// InsertGraph adds a graph page hosting cfg.
func (s *Structure) InsertGraph(afterDisplay int, cfg graph.Config, at time.Time) Identifier {
	return s.insert(afterDisplay, at, &cfg)
}

func (s *Structure) insert(afterDisplay int, at time.Time, cfg *graph.Config) Identifier {
	seq := s.Sequence()
	pos := clamp(afterDisplay, 0, len(seq))
	a := &AddedPage{
		ID:        s.newID(at),
		IsGraph:   cfg != nil,
		CreatedAt: at.UnixMilli(),
	}
	if cfg != nil {
		c := cfg.Clone()
		a.GraphConfig = &c
	}
	s.added[a.ID] = a
	id := a.identifier()
	s.rebase(insertAt(seq, pos, id))
	return id
}

func (s *Structure) newID(at time.Time) string {
	for {
		s.seq++
		id := fmt.Sprintf("blank-%d-%d", at.UnixMilli(), s.seq)
		if _, taken := s.added[id]; !taken {
			return id
		}
	}
}

// Delete removes display page d and returns what was removed.
func (s *Structure) Delete(d int) (Identifier, error) {
	seq := s.Sequence()
	if d < 1 || d > len(seq) {
		return Identifier{}, fmt.Errorf("%w: %d of %d", ErrNoPage, d, len(seq))
	}
	if len(seq) == 1 {
		return Identifier{}, ErrLastPage
	}
	id := seq[d-1]
	if id.IsOriginal() {
		s.deleted[id.PageNumber] = true
	} else {
		delete(s.added, id.ID)
	}
	s.rebase(append(seq[:d-1:d-1], seq[d:]...))
	return id, nil
}

// SetGraph replaces the graph configuration of a graph page.
func (s *Structure) SetGraph(key string, cfg graph.Config) error {
	id, ok := ParseKey(key)
	if !ok || id.IsOriginal() {
		return fmt.Errorf("%w: %s", ErrNoPage, key)
	}
	a, ok := s.added[id.ID]
	if !ok || !a.IsGraph {
		return fmt.Errorf("%w: %s", ErrNoPage, key)
	}
	c := cfg.Clone()
	a.GraphConfig = &c
	return nil
}

// rebase rewrites every added-page anchor so that replaying the additions
// in creation order reproduces seq.
func (s *Structure) rebase(seq []Identifier) {
	rank := make(map[string]int, len(s.added))
	for i, a := range s.replayOrder() {
		rank[a.ID] = i
	}
	for i, id := range seq {
		if id.IsOriginal() {
			continue
		}
		a, ok := s.added[id.ID]
		if !ok {
			continue
		}
		before, after := 0, 0
		for _, prev := range seq[:i] {
			if prev.IsOriginal() {
				before++
				after = prev.PageNumber
				continue
			}
			if r, ok := rank[prev.ID]; ok && r < rank[a.ID] {
				before++
			}
		}
		a.InsertAfterDisplay = &before
		a.InsertAfter = after
	}
}

// Record returns the persisted form of the structure.
func (s *Structure) Record() Record {
	rec := Record{
		BlankPages:   []int{},
		DeletedPages: s.Deleted(),
		AddedPages:   make(map[string]AddedPage, len(s.added)),
		TotalPages:   s.TotalPages(),
	}
	for i, id := range s.Sequence() {
		if !id.IsOriginal() {
			rec.BlankPages = append(rec.BlankPages, i+1)
		}
	}
	for key, a := range s.added {
		c := *a
		if a.InsertAfterDisplay != nil {
			v := *a.InsertAfterDisplay
			c.InsertAfterDisplay = &v
		}
		if a.GraphConfig != nil {
			cfg := a.GraphConfig.Clone()
			c.GraphConfig = &cfg
		}
		rec.AddedPages[key] = c
	}
	return rec
}

func insertAt(seq []Identifier, pos int, id Identifier) []Identifier {
	seq = append(seq, Identifier{})
	copy(seq[pos+1:], seq[pos:])
	seq[pos] = id
	return seq
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
