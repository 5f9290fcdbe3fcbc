// Package dump renders tree snapshots for people and tools.
package dump

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"bptree"
)

// JSON writes snap as indented JSON.
func JSON(w io.Writer, snap bptree.Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}

// Text writes snap one tree level per line, breadth-first from the root.
// Leaves print as <id>[k*k*k*] and internal nodes as
// <id>[child | key* | child ...].
func Text(w io.Writer, snap bptree.Snapshot) error {
	bw := bufio.NewWriter(w)

	depth := make(map[uint64]int, len(snap.Nodes))
	depth[snap.Root] = 0
	level := 0

	for i, n := range snap.Nodes {
		d := depth[n.ID]
		if i > 0 {
			if d != level {
				bw.WriteByte('\n')
				level = d
			} else {
				bw.WriteByte(' ')
			}
		}

		bw.WriteByte('<')
		bw.WriteString(strconv.FormatUint(n.ID, 10))
		bw.WriteString(">[")
		if n.Leaf {
			for _, key := range n.Keys {
				bw.WriteString(strconv.FormatUint(key, 10))
				bw.WriteByte('*')
			}
		} else {
			for j, child := range n.Children {
				depth[child] = d + 1
				if j > 0 {
					fmt.Fprintf(bw, " | %d* | ", n.Separators[j-1])
				}
				bw.WriteString(strconv.FormatUint(child, 10))
			}
		}
		bw.WriteByte(']')
	}
	if len(snap.Nodes) > 0 {
		bw.WriteByte('\n')
	}

	return bw.Flush()
}

// Summary is a compact description of a tree's shape.
type Summary struct {
	Size     int     `json:"size"`
	Height   int     `json:"height"`
	Nodes    int     `json:"nodes"`
	Leaves   int     `json:"leaves"`
	MeanFill float64 `json:"mean_leaf_fill"`
}

// Summarize counts nodes and the mean number of keys per leaf.
func Summarize(snap bptree.Snapshot) Summary {
	s := Summary{
		Size:   snap.Size,
		Height: snap.Height,
		Nodes:  len(snap.Nodes),
	}
	keys := 0
	for _, n := range snap.Nodes {
		if n.Leaf {
			s.Leaves++
			keys += len(n.Keys)
		}
	}
	if s.Leaves > 0 {
		s.MeanFill = float64(keys) / float64(s.Leaves)
	}
	return s
}
