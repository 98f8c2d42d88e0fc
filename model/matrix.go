package model

import "sort"

// Entry 是稀疏矩阵的一个非零元：对端的稠密下标 + 评分。
type Entry struct {
	Index int
	Score float64
}

// Matrix 是用户×电影的稀疏评分矩阵。外部字符串 ID 映射为稠密整型下标
// （arena 式），行/列两个方向各存一份非零元，求解器按需遍历。
// 同一 (user, movie) 出现多次时保留最后一条（输入契约要求唯一）。
type Matrix struct {
	Users []string // 稠密下标 -> 用户 ID，字典序
	Items []string // 稠密下标 -> 电影 ID，字典序

	UserIndex map[string]int
	ItemIndex map[string]int

	Rows [][]Entry // 按用户：该用户评过的 (itemIdx, score)
	Cols [][]Entry // 按电影：评过该电影的 (userIdx, score)

	Mean       float64 // 全局均值
	NumRatings int
}

// NewMatrix 从评分记录构建稀疏矩阵。下标分配按 ID 字典序，
// 同一批数据多次构建得到完全一致的矩阵。
func NewMatrix(ratings []Rating) *Matrix {
	// (user, movie) 去重，后写覆盖先写
	dedup := make(map[string]map[string]float64)
	for _, r := range ratings {
		if r.UserID == "" || r.MovieID == "" {
			continue
		}
		if dedup[r.UserID] == nil {
			dedup[r.UserID] = make(map[string]float64)
		}
		dedup[r.UserID][r.MovieID] = r.Score
	}

	m := &Matrix{
		UserIndex: make(map[string]int),
		ItemIndex: make(map[string]int),
	}
	itemSet := make(map[string]struct{})
	for u, row := range dedup {
		m.Users = append(m.Users, u)
		for i := range row {
			itemSet[i] = struct{}{}
		}
	}
	sort.Strings(m.Users)
	for i := range itemSet {
		m.Items = append(m.Items, i)
	}
	sort.Strings(m.Items)

	for idx, u := range m.Users {
		m.UserIndex[u] = idx
	}
	for idx, i := range m.Items {
		m.ItemIndex[i] = idx
	}

	m.Rows = make([][]Entry, len(m.Users))
	m.Cols = make([][]Entry, len(m.Items))
	var sum float64
	for u, row := range dedup {
		uIdx := m.UserIndex[u]
		for i, score := range row {
			iIdx := m.ItemIndex[i]
			m.Rows[uIdx] = append(m.Rows[uIdx], Entry{Index: iIdx, Score: score})
			m.Cols[iIdx] = append(m.Cols[iIdx], Entry{Index: uIdx, Score: score})
			sum += score
			m.NumRatings++
		}
	}
	// 行内按下标排序，遍历顺序确定
	for _, row := range m.Rows {
		sort.Slice(row, func(a, b int) bool { return row[a].Index < row[b].Index })
	}
	for _, col := range m.Cols {
		sort.Slice(col, func(a, b int) bool { return col[a].Index < col[b].Index })
	}
	if m.NumRatings > 0 {
		m.Mean = sum / float64(m.NumRatings)
	}
	return m
}

// Rating 与 core.Rating 字段一致；model 包保持对 core 的最小依赖，
// 由调用方完成切换（见 FromRatings）。
type Rating struct {
	UserID  string
	MovieID string
	Score   float64
}

// UserRatingCount 返回用户的评分条数，未知用户为 0。
func (m *Matrix) UserRatingCount(userID string) int {
	idx, ok := m.UserIndex[userID]
	if !ok {
		return 0
	}
	return len(m.Rows[idx])
}

// ItemRatingCount 返回电影的被评分条数，未知电影为 0。
func (m *Matrix) ItemRatingCount(movieID string) int {
	idx, ok := m.ItemIndex[movieID]
	if !ok {
		return 0
	}
	return len(m.Cols[idx])
}

// Sparsity 返回矩阵稀疏度：1 - 非零元占比。
func (m *Matrix) Sparsity() float64 {
	total := len(m.Users) * len(m.Items)
	if total == 0 {
		return 1
	}
	return 1 - float64(m.NumRatings)/float64(total)
}
