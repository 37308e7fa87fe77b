package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// HiringRecord is a hired-status application of a student to one of the
// company's vacantes. HiredAt is nil for legacy records without a timestamp;
// those never open an eligibility window.
type HiringRecord struct {
	ApplicationID string
	StudentID     string
	StudentName   string
	StudentEmail  string
	CompanyID     string
	VacanteID     string
	HiredAt       *time.Time
}

func (h HiringRecord) Student() Student {
	return Student{ID: h.StudentID, Name: h.StudentName, Email: h.StudentEmail}
}

// HiringPolicy decides how repeated hires of the same student by the same
// company are treated.
type HiringPolicy string

const (
	// HiringPolicyLatest keeps only the most recent hire per student.
	HiringPolicyLatest HiringPolicy = "latest"
	// HiringPolicyEarliest keeps only the first hire per student.
	HiringPolicyEarliest HiringPolicy = "earliest"
	// HiringPolicyAll treats every hire as an independent window.
	HiringPolicyAll HiringPolicy = "all"
)

func NewHiringPolicy(value string) (HiringPolicy, error) {
	switch HiringPolicy(strings.ToLower(strings.TrimSpace(value))) {
	case "", HiringPolicyLatest:
		return HiringPolicyLatest, nil
	case HiringPolicyEarliest:
		return HiringPolicyEarliest, nil
	case HiringPolicyAll:
		return HiringPolicyAll, nil
	}
	return "", fmt.Errorf("unknown hiring policy: %q", value)
}

// CollapseHires drops records without HiredAt and applies the policy. The
// result is ordered by HiredAt then StudentID so evaluation output is stable.
func CollapseHires(records []HiringRecord, policy HiringPolicy) []HiringRecord {
	dated := make([]HiringRecord, 0, len(records))
	for _, r := range records {
		if r.HiredAt != nil {
			dated = append(dated, r)
		}
	}

	if policy != HiringPolicyAll {
		chosen := make(map[string]HiringRecord, len(dated))
		for _, r := range dated {
			key := r.CompanyID + "\x00" + r.StudentID
			prev, ok := chosen[key]
			switch {
			case !ok:
				chosen[key] = r
			case policy == HiringPolicyEarliest && r.HiredAt.Before(*prev.HiredAt):
				chosen[key] = r
			case policy != HiringPolicyEarliest && r.HiredAt.After(*prev.HiredAt):
				chosen[key] = r
			}
		}
		dated = dated[:0]
		for _, r := range chosen {
			dated = append(dated, r)
		}
	}

	sort.SliceStable(dated, func(i, j int) bool {
		if !dated[i].HiredAt.Equal(*dated[j].HiredAt) {
			return dated[i].HiredAt.Before(*dated[j].HiredAt)
		}
		return dated[i].StudentID < dated[j].StudentID
	})
	return dated
}

// DistinctStudents lists each hired student once, in first-seen order.
func DistinctStudents(records []HiringRecord) []Student {
	seen := make(map[string]struct{}, len(records))
	result := make([]Student, 0, len(records))
	for _, r := range records {
		if _, ok := seen[r.StudentID]; ok {
			continue
		}
		seen[r.StudentID] = struct{}{}
		result = append(result, r.Student())
	}
	return result
}
