/*
 * Copyright 2025 InfAI (CC SES)
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *    http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package graph

import (
	models_error "github.com/SENERGY-Platform/cms-module-manager/pkg/models/error"
)

// Graph is a directed graph with nodes stored in insertion order. An edge from a to b means
// a must be ordered before b.
type Graph struct {
	nodes []string
	index map[string]int
	edges [][]int
}

func New() *Graph {
	return &Graph{index: make(map[string]int)}
}

func (g *Graph) AddNode(name string) int {
	if i, ok := g.index[name]; ok {
		return i
	}
	i := len(g.nodes)
	g.nodes = append(g.nodes, name)
	g.edges = append(g.edges, nil)
	g.index[name] = i
	return i
}

func (g *Graph) AddEdge(from, to string) {
	a := g.AddNode(from)
	b := g.AddNode(to)
	for _, n := range g.edges[a] {
		if n == b {
			return
		}
	}
	g.edges[a] = append(g.edges[a], b)
}

func (g *Graph) Len() int {
	return len(g.nodes)
}

// TopologicalSort orders all nodes with Kahn's algorithm. Nodes without ordering constraints
// keep their insertion order. If the graph contains a cycle a CycleError naming every node
// that could not be ordered is returned.
func (g *Graph) TopologicalSort() ([]string, error) {
	if len(g.nodes) == 0 {
		return nil, nil
	}
	inDegree := make([]int, len(g.nodes))
	for _, neighbors := range g.edges {
		for _, n := range neighbors {
			inDegree[n]++
		}
	}
	queue := make([]int, 0, len(g.nodes))
	for i, d := range inDegree {
		if d == 0 {
			queue = append(queue, i)
		}
	}
	order := make([]string, 0, len(g.nodes))
	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]
		order = append(order, g.nodes[i])
		for _, n := range g.edges[i] {
			inDegree[n]--
			if inDegree[n] == 0 {
				queue = append(queue, n)
			}
		}
	}
	if len(order) != len(g.nodes) {
		var stuck []string
		for i, d := range inDegree {
			if d > 0 {
				stuck = append(stuck, g.nodes[i])
			}
		}
		return nil, models_error.NewCycleError(stuck)
	}
	return order, nil
}
