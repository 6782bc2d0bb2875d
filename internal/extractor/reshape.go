package extractor

import "github.com/user/counterteams-service/internal/entity"

// Transpose turns one sequence per source into one sequence per position.
// out[i][j] is src[j][i]; sources shorter than the longest one are padded with
// fill, so no data is dropped and positions stay aligned.
func Transpose[T any](src [][]T, fill T) [][]T {
	longest := 0
	for _, s := range src {
		longest = max(longest, len(s))
	}

	out := make([][]T, longest)
	for i := range out {
		out[i] = make([]T, len(src))
		for j, s := range src {
			if i < len(s) {
				out[i][j] = s[i]
			} else {
				out[i][j] = fill
			}
		}
	}
	return out
}

// BuildRows chunks every table body text and transposes the result into the
// entry's row layout.
func BuildRows(bodies []string) [][]string {
	chunked := make([][]string, len(bodies))
	for i, body := range bodies {
		chunked[i] = ChunkBodyText(body)
	}
	return Transpose(chunked, "")
}

// SliceHeaders applies the boss's heading bounds to the page's h2 list. Bounds
// past the end are clamped.
func SliceHeaders(h2 []string, boss entity.Boss) []string {
	start := min(max(boss.HeaderStart, 0), len(h2))
	end := min(max(boss.HeaderEnd, start), len(h2))
	out := make([]string, end-start)
	copy(out, h2[start:end])
	return out
}

// skipLeading drops the first n items, tolerating short input.
func skipLeading[T any](items []T, n int) []T {
	if n >= len(items) {
		return []T{}
	}
	if n <= 0 {
		return items
	}
	return items[n:]
}
