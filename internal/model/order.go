package model

import "sort"

// CompareBlocks задаёт полный порядок блоков пользователя:
// position по возрастанию, затем (updated_at ?? created_at) по убыванию,
// затем created_at по убыванию и, наконец, id по возрастанию.
// Возвращает отрицательное число, если a идёт раньше b.
func CompareBlocks(a, b *Block) int {
	if a.Position != b.Position {
		if a.Position < b.Position {
			return -1
		}
		return 1
	}
	if ta, tb := a.LastTouched(), b.LastTouched(); !ta.Equal(tb) {
		if ta.After(tb) {
			return -1
		}
		return 1
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		if a.CreatedAt.After(b.CreatedAt) {
			return -1
		}
		return 1
	}
	switch {
	case a.ID < b.ID:
		return -1
	case a.ID > b.ID:
		return 1
	}
	return 0
}

// SortBlocks сортирует блоки на месте в порядке CompareBlocks.
func SortBlocks(blocks []Block) {
	sort.SliceStable(blocks, func(i, j int) bool {
		return CompareBlocks(&blocks[i], &blocks[j]) < 0
	})
}
