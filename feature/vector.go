package feature

import "math"

// Vector 是一部电影的稀疏特征向量：联合词表维度下标 -> TF-IDF 权重。
// 构建完成后经 L2 归一化，因此两向量的点积即余弦相似度。
type Vector map[int]float64

// Dot 计算稀疏点积，遍历较小的一方。
func (v Vector) Dot(other Vector) float64 {
	a, b := v, other
	if len(b) < len(a) {
		a, b = b, a
	}
	var sum float64
	for idx, w := range a {
		if w2, ok := b[idx]; ok {
			sum += w * w2
		}
	}
	return sum
}

// Norm 返回向量的 L2 范数。
func (v Vector) Norm() float64 {
	var sum float64
	for _, w := range v {
		sum += w * w
	}
	return math.Sqrt(sum)
}

// Cosine 计算余弦相似度。归一化后的向量直接用 Dot 即可，
// 这里保留完整公式以兼容未归一化的输入。
func Cosine(a, b Vector) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	na, nb := a.Norm(), b.Norm()
	if na == 0 || nb == 0 {
		return 0
	}
	return a.Dot(b) / (na * nb)
}

// normalize 原地做 L2 归一化。
func (v Vector) normalize() {
	n := v.Norm()
	if n == 0 {
		return
	}
	for idx := range v {
		v[idx] /= n
	}
}
