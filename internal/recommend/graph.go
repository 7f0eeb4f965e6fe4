package recommend

import (
	"math"
	"sort"

	"curator/internal/keywords"
	"curator/internal/model"
)

const (
	galaxyMinShared   = 2
	galaxyMinNodeSize = 2.0
	galaxyLabelTopics = 5
)

// Node is a creator in the interest galaxy.
type Node struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Val      float64  `json:"val"`
	Keywords []string `json:"keywords"`
}

// Link joins two creators that share keywords. Value is the shared count.
type Link struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Value  int    `json:"value"`
}

// Galaxy is a force-graph ready view of the tracked creators.
type Galaxy struct {
	Nodes []Node `json:"nodes"`
	Links []Link `json:"links"`
}

// BuildGalaxy links every pair of watched creators sharing at least two keywords.
// Node size follows loyalty; nodes are ordered by id.
func BuildGalaxy(creators map[string]model.Creator) Galaxy {
	var watched []model.Creator
	for _, c := range creators {
		if c.Frequency >= 1 {
			watched = append(watched, c)
		}
	}
	sort.Slice(watched, func(i, j int) bool { return watched[i].ID < watched[j].ID })

	g := Galaxy{Nodes: make([]Node, 0, len(watched)), Links: []Link{}}
	for _, c := range watched {
		g.Nodes = append(g.Nodes, Node{
			ID:       c.ID,
			Name:     c.Name,
			Val:      math.Max(galaxyMinNodeSize, float64(c.LoyaltyScore)/10),
			Keywords: keywords.Words(keywords.Top(c.Keywords, galaxyLabelTopics)),
		})
	}
	for i := 0; i < len(watched); i++ {
		for j := i + 1; j < len(watched); j++ {
			shared := 0
			for k := range watched[i].Keywords {
				if _, ok := watched[j].Keywords[k]; ok {
					shared++
				}
			}
			if shared >= galaxyMinShared {
				g.Links = append(g.Links, Link{Source: watched[i].ID, Target: watched[j].ID, Value: shared})
			}
		}
	}
	return g
}
