package account

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_checkPassword(t *testing.T) {
	tests := []struct {
		name    string
		pwd     string
		attrs   []string
		wantTag string
	}{
		{name: "too short", pwd: "Ab1!", wantTag: pwdMinLenTag},
		{name: "whitespace", pwd: "Abcd 1234!", wantTag: pwdNoSpaceTag},
		{name: "all numeric", pwd: "1234567890", wantTag: pwdNotAllNumTag},
		{name: "no special", pwd: "Abcdefgh12", wantTag: pwdComplexityTag},
		{name: "no upper", pwd: "abcdefgh1!", wantTag: pwdComplexityTag},
		{name: "similar to name", pwd: "Jane.Doe1", attrs: []string{"Jane Doe"}, wantTag: pwdAttrSimTag},
		{name: "similar to email", pwd: "Jdoe@school1", attrs: []string{"Jane", "jdoe@school.edu"}, wantTag: pwdAttrSimTag},
		{name: "empty attrs ignored", pwd: "Tr0ub4dor&3", attrs: []string{"", ""}},
		{name: "valid", pwd: "Tr0ub4dor&3", attrs: []string{"Jane Doe", "jane@school.edu"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantTag, checkPassword(tt.pwd, tt.attrs...))
		})
	}
}

func TestValidatePassword(t *testing.T) {
	assert.NoError(t, ValidatePassword("Tr0ub4dor&3", "Jane Doe"))
	assert.EqualError(t, ValidatePassword("short"), pwdMinLenText)
}

func TestQueryFilter_Matches(t *testing.T) {
	bPtr := func(b bool) *bool { return &b }
	acc := Account{Name: "Jane Doe", Email: "jane@school.edu", Role: RoleTeacher, IsActive: true}

	tests := []struct {
		name   string
		filter QueryFilter
		want   bool
	}{
		{name: "empty", want: true},
		{name: "search name", filter: QueryFilter{Search: "DOE"}, want: true},
		{name: "search email", filter: QueryFilter{Search: "school"}, want: true},
		{name: "search miss", filter: QueryFilter{Search: "lol"}},
		{name: "role", filter: QueryFilter{Roles: []string{RoleAdmin, RoleTeacher}}, want: true},
		{name: "role miss", filter: QueryFilter{Roles: []string{RoleAdmin}}},
		{name: "inactive", filter: QueryFilter{IsActive: bPtr(false)}},
		{name: "combo", filter: QueryFilter{Search: "jane", Roles: []string{RoleTeacher}, IsActive: bPtr(true)}, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Matches(acc))
		})
	}
}
