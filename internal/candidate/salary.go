package candidate

import (
	"regexp"
	"strconv"
	"strings"
)

// SalaryBounds is the numeric range extracted from a free-text salary.
type SalaryBounds struct {
	Min float64
	Max float64
}

var salaryFigure = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(k)?`)

// ParseSalaryBounds extracts min/max figures from a salary string such as
// "£50k-60k", "£50,000 - £60,000" or "55000". A "k" suffix multiplies by
// a thousand. Returns nil when no positive figure is present.
func ParseSalaryBounds(value string) *SalaryBounds {
	text := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(value), ",", ""))
	if text == "" {
		return nil
	}

	var numbers []float64
	for _, match := range salaryFigure.FindAllStringSubmatch(text, -1) {
		num, err := strconv.ParseFloat(match[1], 64)
		if err != nil || num <= 0 {
			continue
		}
		if match[2] == "k" {
			num *= 1000
		}
		numbers = append(numbers, num)
	}
	if len(numbers) == 0 {
		return nil
	}

	bounds := &SalaryBounds{Min: numbers[0], Max: numbers[0]}
	for _, num := range numbers[1:] {
		if num < bounds.Min {
			bounds.Min = num
		}
		if num > bounds.Max {
			bounds.Max = num
		}
	}
	return bounds
}

// MaxSalary returns the upper bound of the candidate's salary range, or 0
// when the salary is absent or unparseable.
func (c *Candidate) MaxSalary() float64 {
	bounds := ParseSalaryBounds(c.Salary)
	if bounds == nil {
		return 0
	}
	return bounds.Max
}
