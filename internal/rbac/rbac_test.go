package rbac

import "testing"

func TestCan(t *testing.T) {
	cases := []struct {
		name   string
		role   Role
		action Action
		allow  bool
	}{
		{name: "public read", role: RolePublic, action: ActionRead, allow: true},
		{name: "public write", role: RolePublic, action: ActionWrite, allow: false},
		{name: "public triage", role: RolePublic, action: ActionTriage, allow: false},
		{name: "working group write", role: RoleWorkingGroup, action: ActionWrite, allow: true},
		{name: "working group triage", role: RoleWorkingGroup, action: ActionTriage, allow: true},
		{name: "working group approve", role: RoleWorkingGroup, action: ActionApprove, allow: false},
		{name: "working group admin", role: RoleWorkingGroup, action: ActionAdmin, allow: false},
		{name: "admin approve", role: RoleAdmin, action: ActionApprove, allow: true},
		{name: "admin admin", role: RoleAdmin, action: ActionAdmin, allow: true},
		{name: "unknown role read", role: Role("guest"), action: ActionRead, allow: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Can(tc.role, tc.action); got != tc.allow {
				t.Fatalf("Can(%q, %q) = %v, want %v", tc.role, tc.action, got, tc.allow)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	if Normalize("admin") != RoleAdmin {
		t.Fatal("admin should normalize to itself")
	}
	if Normalize("") != RolePublic {
		t.Fatal("empty role should normalize to public")
	}
	if Normalize("superuser") != RolePublic {
		t.Fatal("unknown role should normalize to public")
	}
}
