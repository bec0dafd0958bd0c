package domain

import (
	"encoding/binary"
	"math"
	"sort"
	"strings"

	"github.com/zeebo/xxh3"
)

// Table is the normalized, read-only participant table. It is built once
// per load and shared by every query; nothing mutates it afterwards.
type Table struct {
	rows      []Participant
	slotNames []string
	matches   int
	version   uint64
}

// NewTable takes ownership of rows. slotNames lists the equipment columns in
// slot order and must match len(Items) of every row.
func NewTable(rows []Participant, slotNames []string) *Table {
	t := &Table{rows: rows, slotNames: slotNames}

	seen := make(map[string]struct{}, len(rows)/10+1)
	for i := range rows {
		seen[rows[i].MatchID] = struct{}{}
	}
	t.matches = len(seen)
	t.version = t.hash()
	return t
}

func (t *Table) Len() int { return len(t.rows) }

// Row returns a pointer into the table. Callers must not modify it.
func (t *Table) Row(i int) *Participant { return &t.rows[i] }

func (t *Table) SlotNames() []string { return append([]string(nil), t.slotNames...) }

func (t *Table) SlotCount() int { return len(t.slotNames) }

// SlotIndex resolves an equipment column designator such as "item0",
// ignoring case.
func (t *Table) SlotIndex(name string) (int, bool) {
	for i, s := range t.slotNames {
		if strings.EqualFold(s, name) {
			return i, true
		}
	}
	return -1, false
}

// DistinctMatches is the number of unique match ids in the table.
func (t *Table) DistinctMatches() int { return t.matches }

// Version identifies the table content. Two tables with the same rows in the
// same order share a version.
func (t *Table) Version() uint64 { return t.version }

func (t *Table) DistinctPlayers() int {
	seen := make(map[string]struct{})
	for i := range t.rows {
		if id := t.rows[i].PlayerID; id != "" {
			seen[id] = struct{}{}
		}
	}
	return len(seen)
}

// Champions returns the distinct non-empty champion labels in ascending order.
func (t *Table) Champions() []string {
	seen := make(map[string]struct{})
	for i := range t.rows {
		if c := t.rows[i].Champion; c != "" {
			seen[c] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Filter returns a new table holding the rows for which keep is true. The
// distinct match count of the result is computed over the kept rows only.
func (t *Table) Filter(keep func(*Participant) bool) *Table {
	var rows []Participant
	for i := range t.rows {
		if keep(&t.rows[i]) {
			rows = append(rows, t.rows[i])
		}
	}
	return NewTable(rows, t.slotNames)
}

func (t *Table) hash() uint64 {
	h := xxh3.New()
	var buf [8]byte

	str := func(s string) {
		h.WriteString(s)
		h.Write([]byte{0})
	}
	num := func(f float64) {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(f))
		h.Write(buf[:])
	}

	for _, s := range t.slotNames {
		str(s)
	}
	for i := range t.rows {
		p := &t.rows[i]
		str(p.MatchID)
		str(p.TeamID)
		str(p.PlayerID)
		str(p.Champion)
		if p.Win {
			h.Write([]byte{1})
		} else {
			h.Write([]byte{0})
		}
		for _, it := range p.Items {
			str(it)
		}
		str(p.Spells[0])
		str(p.Spells[1])
		str(p.RunePrimary)
		str(p.RuneSecondary)
		str(p.RuneShards)
		for _, c := range p.Teammates {
			str(c)
		}
		h.Write([]byte{1})
		for _, c := range p.Enemies {
			str(c)
		}
		h.Write([]byte{1})
		for _, f := range []float64{p.Kills, p.Deaths, p.Assists, p.Gold, p.DamageTotal, p.DamageMagic, p.DamagePhysical, p.DamageTrue, p.Duration} {
			num(f)
		}
	}
	return h.Sum64()
}
