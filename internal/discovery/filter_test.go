package discovery

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"bugtrack/internal/domain"
)

func outcomesNamed(names ...string) []domain.TestOutcome {
	outcomes := make([]domain.TestOutcome, len(names))
	for i, name := range names {
		outcomes[i] = domain.TestOutcome{TestName: name, SourcePath: "run-" + name + ".trace.json"}
	}
	return outcomes
}

func TestFilter_FilterOutcomes(t *testing.T) {
	filter := NewFilter()

	tests := []struct {
		name     string
		outcomes []domain.TestOutcome
		pattern  string
		expected []string
	}{
		{
			name:     "empty pattern returns all",
			outcomes: outcomesNamed("testUser", "testPayment", "testOrder"),
			pattern:  "",
			expected: []string{"testUser", "testPayment", "testOrder"},
		},
		{
			name:     "wildcard pattern matches suffix",
			outcomes: outcomesNamed("testUser", "testPayment", "testOrder"),
			pattern:  "*User",
			expected: []string{"testUser"},
		},
		{
			name:     "wildcard pattern matches substring",
			outcomes: outcomesNamed("testUser", "testPayment", "testOrder", "testPaymentRefund"),
			pattern:  "*Payment*",
			expected: []string{"testPayment", "testPaymentRefund"},
		},
		{
			name:     "simple contains match",
			outcomes: outcomesNamed("testUser", "testPayment", "testOrder"),
			pattern:  "Payment",
			expected: []string{"testPayment"},
		},
		{
			name:     "single character wildcard",
			outcomes: outcomesNamed("testLogin", "testLoginWithSSO", "testLogout"),
			pattern:  "testLog?ut",
			expected: []string{"testLogout"},
		},
		{
			name:     "no matches",
			outcomes: outcomesNamed("testUser", "testPayment"),
			pattern:  "*NonExistent*",
			expected: nil,
		},
		{
			name:     "file name is not the test name",
			outcomes: outcomesNamed("testUser"),
			pattern:  "run-*",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var names []string
			for _, o := range filter.FilterOutcomes(tt.outcomes, tt.pattern) {
				names = append(names, o.TestName)
			}
			assert.Equal(t, tt.expected, names)
		})
	}
}

func TestMatch(t *testing.T) {
	tests := []struct {
		name, pattern string
		want          bool
	}{
		{name: "testUserService", pattern: "*User*Service", want: true},
		{name: "testServiceUser", pattern: "*User*Service", want: false},
		{name: "anything", pattern: "*", want: true},
		{name: "testA", pattern: "test?", want: true},
		{name: "testAB", pattern: "test?", want: false},
		{name: "testA", pattern: "", want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name+"/"+tt.pattern, func(t *testing.T) {
			assert.Equal(t, tt.want, Match(tt.name, tt.pattern))
		})
	}
}
