package graphviz

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// plainLayout is the part of Graphviz "plain" output the engine needs.
// All values are in inches with the origin at the bottom left.
type plainLayout struct {
	Width, Height float64
	Nodes         map[string]plainPoint
}

type plainPoint struct {
	X, Y float64
}

// parsePlain reads the "graph" and "node" statements of plain output:
//
//	graph scale width height
//	node name x y width height label style shape color fillcolor
//	edge ...
//	stop
func parsePlain(data []byte) (plainLayout, error) {
	out := plainLayout{Nodes: make(map[string]plainPoint)}
	seenGraph := false

	sc := bufio.NewScanner(bytes.NewReader(data))
	for line := 1; sc.Scan(); line++ {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "graph":
			if len(fields) < 4 {
				return out, fmt.Errorf("line %d: short graph statement", line)
			}
			nums, err := parseFloats(fields[2:4])
			if err != nil {
				return out, fmt.Errorf("line %d: %w", line, err)
			}
			out.Width, out.Height = nums[0], nums[1]
			seenGraph = true
		case "node":
			if len(fields) < 4 {
				return out, fmt.Errorf("line %d: short node statement", line)
			}
			nums, err := parseFloats(fields[2:4])
			if err != nil {
				return out, fmt.Errorf("line %d: %w", line, err)
			}
			out.Nodes[unquote(fields[1])] = plainPoint{X: nums[0], Y: nums[1]}
		case "stop":
			if !seenGraph {
				return out, fmt.Errorf("missing graph statement")
			}
			return out, nil
		}
	}
	if err := sc.Err(); err != nil {
		return out, err
	}
	if !seenGraph {
		return out, fmt.Errorf("missing graph statement")
	}
	return out, nil
}

func parseFloats(fields []string) ([]float64, error) {
	out := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", f)
		}
		out[i] = v
	}
	return out, nil
}

func unquote(s string) string {
	if u, err := strconv.Unquote(s); err == nil {
		return u
	}
	return s
}
