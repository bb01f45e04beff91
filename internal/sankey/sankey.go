// Package sankey turns flow records into the plotly Sankey figure served to
// the chart page.
package sankey

import (
	"fmt"

	"figaroflows/internal/model"
)

const (
	nodePad       = 15
	nodeThickness = 20
	valueFormat   = ".0f"
	valueSuffix   = "€"
	fontSize      = 10
	figureHeight  = 800
)

type Figure struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

type Trace struct {
	Type        string `json:"type"`
	ValueFormat string `json:"valueformat"`
	ValueSuffix string `json:"valuesuffix"`
	Node        Node   `json:"node"`
	Link        Link   `json:"link"`
}

type Node struct {
	Label     []string `json:"label"`
	Pad       int      `json:"pad"`
	Thickness int      `json:"thickness"`
}

type Link struct {
	Source []int     `json:"source"`
	Target []int     `json:"target"`
	Value  []float64 `json:"value"`
}

type Layout struct {
	Title  Title `json:"title"`
	Font   Font  `json:"font"`
	Height int   `json:"height"`
}

type Title struct {
	Text string `json:"text"`
}

type Font struct {
	Size int `json:"size"`
}

// Build links every industry code to its flow direction. Node labels are the
// distinct sources and targets in order of first appearance.
func Build(year int, records []model.FlowRecord) Figure {
	index := make(map[string]int)
	labels := make([]string, 0)
	nodeFor := func(label string) int {
		if i, ok := index[label]; ok {
			return i
		}
		index[label] = len(labels)
		labels = append(labels, label)
		return index[label]
	}

	link := Link{
		Source: make([]int, 0, len(records)),
		Target: make([]int, 0, len(records)),
		Value:  make([]float64, 0, len(records)),
	}
	for _, record := range records {
		link.Source = append(link.Source, nodeFor(record.IndustryCode))
		link.Target = append(link.Target, nodeFor(string(record.FlowType)))
		link.Value = append(link.Value, record.Value)
	}

	return Figure{
		Data: []Trace{{
			Type:        "sankey",
			ValueFormat: valueFormat,
			ValueSuffix: valueSuffix,
			Node: Node{
				Label:     labels,
				Pad:       nodePad,
				Thickness: nodeThickness,
			},
			Link: link,
		}},
		Layout: Layout{
			Title:  Title{Text: fmt.Sprintf("FIGARO Trade Flows - %d", year)},
			Font:   Font{Size: fontSize},
			Height: figureHeight,
		},
	}
}
