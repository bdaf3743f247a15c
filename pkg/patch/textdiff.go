package patch

import (
	"bytes"
	"sort"
	"strings"
)

// DiffText computes an anchored diff between old and new, in the style of
// Myers/patience diff restricted to lines that are unique on both sides,
// producing a Diff with context lines of context context. Adapted from the
// x/tools-derived anchored-diff implementation (tgs/Szymanski longest common
// subsequence of unique lines) to emit our own Line/Hunk types directly
// instead of a separate display-oriented hunk type.
func DiffText(lname, rname string, old, new []byte, context int) Diff {
	d := Diff{LName: lname, RName: rname}
	if bytes.Equal(old, new) {
		return d
	}
	x := splitLines(old)
	y := splitLines(new)

	type pos struct{ x, y int }
	var (
		done  pos
		chunk pos
		count pos
		lines []Line
	)

	for _, m := range tgsMatches(x, y) {
		if m.x < done.x {
			continue
		}
		start := m
		for start.x > done.x && start.y > done.y && x[start.x-1] == y[start.y-1] {
			start.x--
			start.y--
		}
		end := m
		for end.x < len(x) && end.y < len(y) && x[end.x] == y[end.y] {
			end.x++
			end.y++
		}

		for _, s := range x[done.x:start.x] {
			count.x++
			lines = append(lines, Line{Kind: KindRemove, Content: s})
		}
		for _, s := range y[done.y:start.y] {
			count.y++
			lines = append(lines, Line{Kind: KindAdd, Content: s})
		}

		if (end.x < len(x) || end.y < len(y)) &&
			(end.x-start.x < context || (len(lines) > 0 && end.x-start.x < 2*context)) {
			for _, s := range x[start.x:end.x] {
				count.x++
				count.y++
				lines = append(lines, Line{Kind: KindContext, Content: s})
			}
			done = end
			continue
		}

		if len(lines) > 0 {
			n := end.x - start.x
			if n > context {
				n = context
			}
			for _, s := range x[start.x : start.x+n] {
				count.x++
				count.y++
				lines = append(lines, Line{Kind: KindContext, Content: s})
			}
			done = pos{start.x + n, start.y + n}

			h := Hunk{LStart: chunk.x + 1, RStart: chunk.y + 1, Lines: lines}
			h.Normalize()
			d.Hunks = append(d.Hunks, h)
			chunk = pos{chunk.x + count.x, chunk.y + count.y}
			count = pos{}
			lines = nil
		}

		if end.x >= len(x) && end.y >= len(y) {
			break
		}

		chunk = pos{end.x - context, end.y - context}
		for _, s := range x[chunk.x:end.x] {
			count.x++
			count.y++
			lines = append(lines, Line{Kind: KindContext, Content: s})
		}
		done = end
	}
	return d
}

// splitLines breaks text into display lines, each carrying its trailing
// newline so the writer can reproduce a missing-final-newline file exactly.
func splitLines(b []byte) []string {
	parts := strings.SplitAfter(string(b), "\n")
	if len(parts) > 0 && parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	return parts
}

type linePair struct{ x, y int }

// tgsMatches returns the pairs of indexes of the longest common subsequence
// of lines that appear exactly once in both x and y — an "anchored diff":
// Szymanski's algorithm (Princeton TR #170, 1975), same anchoring strategy
// the corpus's own anchored-diff fork of x/tools/internal/diffp uses.
func tgsMatches(x, y []string) []linePair {
	m := make(map[string]int)
	for _, s := range x {
		if c := m[s]; c > -2 {
			m[s] = c - 1
		}
	}
	for _, s := range y {
		if c := m[s]; c > -8 {
			m[s] = c - 4
		}
	}

	var xi, yi, inv []int
	for i, s := range y {
		if m[s] == -1+-4 {
			m[s] = len(yi)
			yi = append(yi, i)
		}
	}
	for i, s := range x {
		if j, ok := m[s]; ok && j >= 0 {
			xi = append(xi, i)
			inv = append(inv, j)
		}
	}

	J := inv
	n := len(xi)
	T := make([]int, n)
	L := make([]int, n)
	for i := range T {
		T[i] = n + 1
	}
	for i := 0; i < n; i++ {
		k := sort.Search(n, func(k int) bool { return T[k] >= J[i] })
		T[k] = J[i]
		L[i] = k + 1
	}
	k := 0
	for _, v := range L {
		if k < v {
			k = v
		}
	}
	seq := make([]linePair, 2+k)
	seq[1+k] = linePair{len(x), len(y)}
	lastj := n
	for i := n - 1; i >= 0; i-- {
		if L[i] == k && J[i] < lastj {
			seq[k] = linePair{xi[i], yi[J[i]]}
			k--
		}
	}
	seq[0] = linePair{0, 0}
	return seq
}
