package auth

import (
	"strings"
)

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleHR       Role = "hr"
	RoleEmployee Role = "employee"
)

var Roles = []Role{RoleAdmin, RoleHR, RoleEmployee}

func ParseRole(value string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(value))) {
	case RoleAdmin:
		return RoleAdmin, true
	case RoleHR:
		return RoleHR, true
	case RoleEmployee:
		return RoleEmployee, true
	default:
		return "", false
	}
}

// Metadata is the role information attached to an account at sign-up.
type Metadata struct {
	Role    string `json:"role,omitempty"`
	IsAdmin bool   `json:"is_admin,omitempty"`
	IsHR    bool   `json:"is_hr,omitempty"`
	Name    string `json:"name,omitempty"`
}

// Rule names the precedence step that produced a role.
type Rule string

const (
	RuleAdminEmail    Rule = "admin_email"
	RuleAdminMetadata Rule = "admin_metadata"
	RuleHRMetadata    Rule = "hr_metadata"
	RuleEmployee      Rule = "linked_employee"
	RuleDefault       Rule = "default"
)

type Resolution struct {
	Role Role
	Rule Rule
}

// Resolve applies, in order: admin by email or metadata, HR by metadata,
// employee by linked record, and finally HR for anything unclassified.
func Resolve(email string, meta Metadata, hasEmployee bool) Resolution {
	if strings.Contains(strings.ToLower(email), "admin") {
		return Resolution{Role: RoleAdmin, Rule: RuleAdminEmail}
	}
	if meta.Role == string(RoleAdmin) || meta.IsAdmin {
		return Resolution{Role: RoleAdmin, Rule: RuleAdminMetadata}
	}
	if meta.Role == string(RoleHR) || meta.IsHR {
		return Resolution{Role: RoleHR, Rule: RuleHRMetadata}
	}
	if hasEmployee {
		return Resolution{Role: RoleEmployee, Rule: RuleEmployee}
	}
	return Resolution{Role: RoleHR, Rule: RuleDefault}
}

func ResolveRole(email string, meta Metadata, hasEmployee bool) Role {
	return Resolve(email, meta, hasEmployee).Role
}

// MetadataForRole builds sign-up metadata the way accounts have always been
// created: role name, HR flag and a display name.
func MetadataForRole(role Role, name, email string) Metadata {
	if strings.TrimSpace(name) == "" {
		name, _, _ = strings.Cut(email, "@")
	}
	return Metadata{
		Role:    string(role),
		IsAdmin: role == RoleAdmin,
		IsHR:    role == RoleHR,
		Name:    name,
	}
}
