package config

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// NGDatesDoc is the editable, string-typed form of ng_dates.yaml used by the
// dashboard endpoints. The scheduling core never sees it; it is parsed into
// NGConfig before a build.
type NGDatesDoc struct {
	Global   []string            `yaml:"global" json:"global"`
	ByMember map[string][]string `yaml:"by_member" json:"by_member"`
	ByPeriod map[string][]Period `yaml:"by_period" json:"by_period"`
}

// NGFile wraps the document under its top-level key.
type NGFile struct {
	NGDates NGDatesDoc `yaml:"ng_dates"`
}

// LoadNGFile reads ng_dates.yaml for editing, normalizing missing sections.
// A missing file yields an empty document.
func LoadNGFile(path string) (*NGFile, error) {
	var f NGFile
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			f.normalize()
			return &f, nil
		}
		return nil, fmt.Errorf("read ng dates: %w", err)
	}
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse ng dates: %w", err)
	}
	f.normalize()
	return &f, nil
}

func (f *NGFile) normalize() {
	if f.NGDates.Global == nil {
		f.NGDates.Global = []string{}
	}
	if f.NGDates.ByMember == nil {
		f.NGDates.ByMember = make(map[string][]string)
	}
	if f.NGDates.ByPeriod == nil {
		f.NGDates.ByPeriod = make(map[string][]Period)
	}
}

// SaveNGFile writes the document back, keeping a .bak copy of the previous
// version.
func SaveNGFile(path string, f *NGFile) error {
	if prev, err := os.ReadFile(path); err == nil {
		if err := os.WriteFile(path+".bak", prev, 0o644); err != nil {
			return fmt.Errorf("backup ng dates: %w", err)
		}
	}
	data, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("marshal ng dates: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write ng dates: %w", err)
	}
	return nil
}

// AddGlobal inserts a global NG date, keeping the list sorted and unique.
func (f *NGFile) AddGlobal(date string) {
	for _, d := range f.NGDates.Global {
		if d == date {
			return
		}
	}
	f.NGDates.Global = append(f.NGDates.Global, date)
	sort.Strings(f.NGDates.Global)
}

// RemoveGlobal deletes a global NG date if present.
func (f *NGFile) RemoveGlobal(date string) {
	out := f.NGDates.Global[:0]
	for _, d := range f.NGDates.Global {
		if d != date {
			out = append(out, d)
		}
	}
	f.NGDates.Global = out
}

// AddMemberDate inserts a per-member NG date, sorted and unique.
func (f *NGFile) AddMemberDate(member, date string) {
	dates := f.NGDates.ByMember[member]
	for _, d := range dates {
		if d == date {
			return
		}
	}
	dates = append(dates, date)
	sort.Strings(dates)
	f.NGDates.ByMember[member] = dates
}

// RemoveMemberDate deletes a per-member NG date, dropping the member entry
// when it empties.
func (f *NGFile) RemoveMemberDate(member, date string) {
	dates, ok := f.NGDates.ByMember[member]
	if !ok {
		return
	}
	out := dates[:0]
	for _, d := range dates {
		if d != date {
			out = append(out, d)
		}
	}
	if len(out) == 0 {
		delete(f.NGDates.ByMember, member)
	} else {
		f.NGDates.ByMember[member] = out
	}
}

// AddPeriod inserts an exclusion period, sorted by start and deduplicated.
func (f *NGFile) AddPeriod(member string, p Period) {
	periods := f.NGDates.ByPeriod[member]
	for _, existing := range periods {
		if existing == p {
			return
		}
	}
	periods = append(periods, p)
	sort.Slice(periods, func(i, j int) bool { return periods[i].Start < periods[j].Start })
	f.NGDates.ByPeriod[member] = periods
}

// RemovePeriod deletes periods matching the start date, dropping the member
// entry when it empties.
func (f *NGFile) RemovePeriod(member, start string) {
	periods, ok := f.NGDates.ByPeriod[member]
	if !ok {
		return
	}
	out := periods[:0]
	for _, p := range periods {
		if p.Start != start {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		delete(f.NGDates.ByPeriod, member)
	} else {
		f.NGDates.ByPeriod[member] = out
	}
}
