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

package registry

import (
	"maps"
	"slices"

	helper_graph "github.com/SENERGY-Platform/cms-module-manager/pkg/components/helper/graph"
	models_module "github.com/SENERGY-Platform/cms-module-manager/pkg/models/module"
)

type DependencyMode int

const (
	// DeleteMode checks which installed modules would lose a dependency.
	DeleteMode DependencyMode = iota
	// ImportMode checks which dependencies of a module are not installed.
	ImportMode
)

// checkDependencies returns the names of installed modules depending on mod in DeleteMode and
// the unsatisfied dependencies of mod in ImportMode.
func checkDependencies(installed map[string]models_module.Module, mod models_module.Module, mode DependencyMode) []string {
	var result []string
	switch mode {
	case DeleteMode:
		for _, name := range slices.Sorted(maps.Keys(installed)) {
			if name == mod.Name() {
				continue
			}
			for _, dep := range installed[name].Dependencies() {
				if dep.Name == mod.Name() {
					result = append(result, name)
					break
				}
			}
		}
	case ImportMode:
		for _, dep := range mod.Dependencies() {
			other, ok := installed[dep.Name]
			if ok && dep.Satisfies(models_module.NewDependency(other.Name(), other.Version())) {
				continue
			}
			result = append(result, dep.String())
		}
	}
	return result
}

// BuildDependencyMap groups module names by dependency. If forward is true the map holds the
// dependent modules of every dependency target, else the dependency targets of every module.
// Every module is present as a key in the backward map.
func BuildDependencyMap(mods []models_module.Module, forward bool) map[string][]string {
	depMap := make(map[string][]string)
	for _, mod := range mods {
		if !forward {
			depMap[mod.Name()] = nil
		}
		for _, dep := range mod.Dependencies() {
			if forward {
				depMap[dep.Name] = appendUnique(depMap[dep.Name], mod.Name())
			} else {
				depMap[mod.Name()] = appendUnique(depMap[mod.Name()], dep.Name)
			}
		}
	}
	for k := range depMap {
		slices.Sort(depMap[k])
	}
	return depMap
}

// TopologicalSort orders names so that every module follows all modules it depends on.
// Dependencies outside of names are ignored. Independent modules keep the order of names.
func TopologicalSort(depMap map[string][]string, names []string) ([]string, error) {
	set := make(map[string]struct{}, len(names))
	g := helper_graph.New()
	for _, name := range names {
		set[name] = struct{}{}
		g.AddNode(name)
	}
	for _, name := range names {
		for _, dep := range depMap[name] {
			if _, ok := set[dep]; ok {
				g.AddEdge(dep, name)
			}
		}
	}
	return g.TopologicalSort()
}

func appendUnique(sl []string, s string) []string {
	if slices.Contains(sl, s) {
		return sl
	}
	return append(sl, s)
}
