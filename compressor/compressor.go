package compressor

import (
	"encoding/binary"
	"fmt"
	"sort"
)

// OriginalTable is a dense table stored in row-major order. Every entry is initialized with the empty value.
type OriginalTable struct {
	entries    []int
	rowCount   int
	colCount   int
	emptyValue int
}

func NewOriginalTable(rowCount, colCount int, emptyValue int) (*OriginalTable, error) {
	if rowCount <= 0 || colCount <= 0 {
		return nil, fmt.Errorf("a table must have at least one row and one column; rows: %v, columns: %v", rowCount, colCount)
	}
	entries := make([]int, rowCount*colCount)
	for i := range entries {
		entries[i] = emptyValue
	}
	return &OriginalTable{
		entries:    entries,
		rowCount:   rowCount,
		colCount:   colCount,
		emptyValue: emptyValue,
	}, nil
}

func (t *OriginalTable) Set(row, col int, v int) {
	t.entries[row*t.colCount+col] = v
}

func (t *OriginalTable) row(row int) []int {
	return t.entries[row*t.colCount : (row+1)*t.colCount]
}

type Table interface {
	Lookup(row, col int) (int, error)
	OriginalTableSize() (int, int)

	// StoredSize returns the number of integers the table holds.
	StoredSize() int
}

var (
	_ Table = &UniqueRowsTable{}
	_ Table = &RowDisplacementTable{}
)

// Compress compresses a table with every method and returns the smallest result.
func Compress(orig *OriginalTable) Table {
	unique := compressUniqueRows(orig)
	displaced := compressRowDisplacement(orig)
	if unique.StoredSize() <= displaced.StoredSize() {
		return unique
	}
	return displaced
}

// UniqueRowsTable stores each distinct row once. Rows with the same entries share storage.
type UniqueRowsTable struct {
	Rows             []int
	RowNums          []int
	OriginalRowCount int
	OriginalColCount int
}

func compressUniqueRows(orig *OriginalTable) *UniqueRowsTable {
	tab := &UniqueRowsTable{
		RowNums:          make([]int, orig.rowCount),
		OriginalRowCount: orig.rowCount,
		OriginalColCount: orig.colCount,
	}
	rowNums := map[string]int{}
	for row := 0; row < orig.rowCount; row++ {
		entries := orig.row(row)
		key := make([]byte, 0, len(entries)*2)
		for _, v := range entries {
			key = binary.AppendVarint(key, int64(v))
		}
		num, ok := rowNums[string(key)]
		if !ok {
			num = len(rowNums)
			rowNums[string(key)] = num
			tab.Rows = append(tab.Rows, entries...)
		}
		tab.RowNums[row] = num
	}
	return tab
}

func (tab *UniqueRowsTable) Lookup(row, col int) (int, error) {
	if row < 0 || row >= tab.OriginalRowCount || col < 0 || col >= tab.OriginalColCount {
		return 0, fmt.Errorf("indexes are out of range: [%v, %v]", row, col)
	}
	return tab.Rows[tab.RowNums[row]*tab.OriginalColCount+col], nil
}

func (tab *UniqueRowsTable) OriginalTableSize() (int, int) {
	return tab.OriginalRowCount, tab.OriginalColCount
}

func (tab *UniqueRowsTable) StoredSize() int {
	return len(tab.Rows) + len(tab.RowNums)
}

const noRow = -1

// RowDisplacementTable overlays the rows of a sparse table on a single array. Each row is shifted by its own
// displacement so that its non-empty entries land on free slots. Owners records the row each slot belongs to.
type RowDisplacementTable struct {
	OriginalRowCount int
	OriginalColCount int
	EmptyValue       int
	Entries          []int
	Owners           []int
	Displacements    []int
}

func compressRowDisplacement(orig *OriginalTable) *RowDisplacementTable {
	type sparseRow struct {
		num  int
		cols []int
	}
	rows := make([]*sparseRow, orig.rowCount)
	for row := 0; row < orig.rowCount; row++ {
		r := &sparseRow{
			num: row,
		}
		for col, v := range orig.row(row) {
			if v != orig.emptyValue {
				r.cols = append(r.cols, col)
			}
		}
		rows[row] = r
	}
	// Placing dense rows first leaves the gaps to the sparse ones.
	sort.SliceStable(rows, func(i, j int) bool {
		return len(rows[i].cols) > len(rows[j].cols)
	})

	size := len(orig.entries)
	entries := make([]int, size)
	owners := make([]int, size)
	for i := range entries {
		entries[i] = orig.emptyValue
		owners[i] = noRow
	}
	displacements := make([]int, orig.rowCount)
	bottom := orig.colCount
	next := 0
	for _, r := range rows {
		if len(r.cols) == 0 {
			continue
		}
		d := next
		for !fits(owners, d, r.cols) {
			d++
		}
		displacements[r.num] = d
		for _, col := range r.cols {
			entries[d+col] = orig.entries[r.num*orig.colCount+col]
			owners[d+col] = r.num
		}
		if d+orig.colCount > bottom {
			bottom = d + orig.colCount
		}
		next = d + 1
	}

	return &RowDisplacementTable{
		OriginalRowCount: orig.rowCount,
		OriginalColCount: orig.colCount,
		EmptyValue:       orig.emptyValue,
		Entries:          entries[:bottom],
		Owners:           owners[:bottom],
		Displacements:    displacements,
	}
}

func fits(owners []int, d int, cols []int) bool {
	for _, col := range cols {
		if owners[d+col] != noRow {
			return false
		}
	}
	return true
}

func (tab *RowDisplacementTable) Lookup(row int, col int) (int, error) {
	if row < 0 || row >= tab.OriginalRowCount || col < 0 || col >= tab.OriginalColCount {
		return tab.EmptyValue, fmt.Errorf("indexes are out of range: [%v, %v]", row, col)
	}
	i := tab.Displacements[row] + col
	if i >= len(tab.Owners) || tab.Owners[i] != row {
		return tab.EmptyValue, nil
	}
	return tab.Entries[i], nil
}

func (tab *RowDisplacementTable) OriginalTableSize() (int, int) {
	return tab.OriginalRowCount, tab.OriginalColCount
}

func (tab *RowDisplacementTable) StoredSize() int {
	return len(tab.Entries) + len(tab.Owners) + len(tab.Displacements)
}
