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

package module

type Dependency struct {
	Name    string  `json:"name" yaml:"name"`
	Version Version `json:"version" yaml:"version"`
}

func NewDependency(name string, version Version) Dependency {
	return Dependency{
		Name:    name,
		Version: version,
	}
}

// Satisfies reports whether other provides at least the required version of this dependency.
func (d Dependency) Satisfies(other Dependency) bool {
	return d.Name == other.Name && d.Version.Compare(other.Version) <= 0
}

// Equal requires identical names and versions, unlike Satisfies.
func (d Dependency) Equal(other Dependency) bool {
	return d.Name == other.Name && d.Version.Ordinal() == other.Version.Ordinal()
}

func (d Dependency) String() string {
	return d.Name + " (" + d.Version.String() + ")"
}
