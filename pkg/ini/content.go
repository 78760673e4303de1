// Copyright 2018 SumUp Ltd.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ini

type Content struct {
	SectionsByName map[string]*Section
	// NOTE: Preserves file order so imports are deterministic.
	SectionNames []string
}

func NewIniContent() *Content {
	return &Content{SectionsByName: map[string]*Section{}}
}

func (content *Content) AddSection(section *Section) {
	if _, ok := content.SectionsByName[section.Name]; !ok {
		content.SectionNames = append(content.SectionNames, section.Name)
	}

	content.SectionsByName[section.Name] = section
}

func (content *Content) Sections() []*Section {
	sections := make([]*Section, 0, len(content.SectionNames))
	for _, name := range content.SectionNames {
		sections = append(sections, content.SectionsByName[name])
	}

	return sections
}

type Section struct {
	Name   string
	Values []*SectionValue
}

func NewIniSection(name string) *Section {
	return &Section{Name: name}
}

// Value returns the value of `key` and whether it was present.
func (section *Section) Value(key string) (string, bool) {
	for _, value := range section.Values {
		if value.KeyName == key {
			return value.Value, true
		}
	}

	return "", false
}

type SectionValue struct {
	KeyName string
	Value   string
}

func NewIniSectionValue(keyName, value string) *SectionValue {
	return &SectionValue{
		KeyName: keyName,
		Value:   value,
	}
}
