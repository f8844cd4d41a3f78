package service

import (
	"errors"
	"testing"

	"budgetme/internal/models"
	"budgetme/internal/repository"
)

func newFamilyService(env *testEnv) *FamilyService {
	requestRepo := repository.NewJoinRequestRepository(env.db)
	return NewFamilyService(env.db, env.familyRepo, requestRepo, NewAuditLogger(env.auditRepo))
}

func TestCreateFamily(t *testing.T) {
	env := newTestEnv(t)
	svc := newFamilyService(env)
	founder := env.createUser(t, "founder@example.com")

	family, err := svc.CreateFamily("Smiths", models.VisibilityPublic, founder)
	if err != nil {
		t.Fatalf("CreateFamily() error = %v", err)
	}

	// The founder must come out as the active owner.
	member := env.member(t, family.ID, founder)
	if member.Role != models.RoleOwner {
		t.Errorf("Founder role = %v, want owner", member.Role)
	}
	if member.Status != models.StatusActive {
		t.Errorf("Founder status = %v, want active", member.Status)
	}
	env.assertOwnerCount(t, family.ID, 1)

	t.Run("empty name rejected", func(t *testing.T) {
		if _, err := svc.CreateFamily("", models.VisibilityPublic, founder); err == nil {
			t.Error("CreateFamily() with empty name should fail")
		}
	})

	t.Run("unknown visibility falls back to private", func(t *testing.T) {
		created, err := svc.CreateFamily("Jones", models.Visibility("secret"), founder)
		if err != nil {
			t.Fatalf("CreateFamily() error = %v", err)
		}
		if created.Visibility != models.VisibilityPrivate {
			t.Errorf("Visibility = %v, want private", created.Visibility)
		}
	})
}

func TestRequestToJoin(t *testing.T) {
	env := newTestEnv(t)
	svc := newFamilyService(env)
	owner := env.createUser(t, "owner@example.com")

	publicFamily, err := svc.CreateFamily("Open House", models.VisibilityPublic, owner)
	if err != nil {
		t.Fatalf("CreateFamily() error = %v", err)
	}
	privateFamily, err := svc.CreateFamily("Closed House", models.VisibilityPrivate, owner)
	if err != nil {
		t.Fatalf("CreateFamily() error = %v", err)
	}

	applicant := env.createUser(t, "applicant@example.com")

	t.Run("private family rejects requests", func(t *testing.T) {
		_, err := svc.RequestToJoin(privateFamily.ID, applicant)
		if !errors.Is(err, ErrFamilyPrivate) {
			t.Errorf("error = %v, want ErrFamilyPrivate", err)
		}
	})

	t.Run("unknown family", func(t *testing.T) {
		_, err := svc.RequestToJoin(99999, applicant)
		if !errors.Is(err, ErrFamilyNotFound) {
			t.Errorf("error = %v, want ErrFamilyNotFound", err)
		}
	})

	t.Run("existing member cannot apply", func(t *testing.T) {
		_, err := svc.RequestToJoin(publicFamily.ID, owner)
		if !errors.Is(err, ErrAlreadyMember) {
			t.Errorf("error = %v, want ErrAlreadyMember", err)
		}
	})

	t.Run("first request succeeds, second is pending", func(t *testing.T) {
		request, err := svc.RequestToJoin(publicFamily.ID, applicant)
		if err != nil {
			t.Fatalf("RequestToJoin() error = %v", err)
		}
		if !request.IsPending() {
			t.Errorf("Status = %v, want pending", request.Status)
		}

		_, err = svc.RequestToJoin(publicFamily.ID, applicant)
		if !errors.Is(err, ErrRequestPending) {
			t.Errorf("error = %v, want ErrRequestPending", err)
		}
	})
}

func TestApproveJoinRequest(t *testing.T) {
	env := newTestEnv(t)
	svc := newFamilyService(env)
	owner := env.createUser(t, "owner@example.com")
	family, err := svc.CreateFamily("Open House", models.VisibilityPublic, owner)
	if err != nil {
		t.Fatalf("CreateFamily() error = %v", err)
	}
	applicant := env.createUser(t, "applicant@example.com")

	request, err := svc.RequestToJoin(family.ID, applicant)
	if err != nil {
		t.Fatalf("RequestToJoin() error = %v", err)
	}

	t.Run("plain member cannot approve", func(t *testing.T) {
		member := env.createUser(t, "member@example.com")
		env.addMember(t, family.ID, member, models.RoleMember)

		if err := svc.ApproveJoinRequest(request.ID, member); !errors.Is(err, ErrNotPermitted) {
			t.Errorf("error = %v, want ErrNotPermitted", err)
		}
	})

	if err := svc.ApproveJoinRequest(request.ID, owner); err != nil {
		t.Fatalf("ApproveJoinRequest() error = %v", err)
	}

	// The requester joins as a regular member.
	admitted := env.member(t, family.ID, applicant)
	if admitted.Role != models.RoleMember {
		t.Errorf("Admitted role = %v, want member", admitted.Role)
	}
	if admitted.Status != models.StatusActive {
		t.Errorf("Admitted status = %v, want active", admitted.Status)
	}

	t.Run("request cannot be resolved twice", func(t *testing.T) {
		if err := svc.ApproveJoinRequest(request.ID, owner); !errors.Is(err, ErrRequestAlreadyDone) {
			t.Errorf("error = %v, want ErrRequestAlreadyDone", err)
		}
		if err := svc.RejectJoinRequest(request.ID, owner); !errors.Is(err, ErrRequestAlreadyDone) {
			t.Errorf("error = %v, want ErrRequestAlreadyDone", err)
		}
	})
}

func TestApproveJoinRequestReinstatesRemovedMember(t *testing.T) {
	env := newTestEnv(t)
	svc := newFamilyService(env)
	owner := env.createUser(t, "owner@example.com")
	family, err := svc.CreateFamily("Open House", models.VisibilityPublic, owner)
	if err != nil {
		t.Fatalf("CreateFamily() error = %v", err)
	}

	rejoiner := env.createUser(t, "rejoiner@example.com")
	env.addMember(t, family.ID, rejoiner, models.RoleAdmin)

	if result, err := env.membership.RemoveMember(family.ID, owner, rejoiner); err != nil || !result.Success {
		t.Fatalf("RemoveMember() = %+v, %v", result, err)
	}

	request, err := svc.RequestToJoin(family.ID, rejoiner)
	if err != nil {
		t.Fatalf("RequestToJoin() error = %v", err)
	}
	if err := svc.ApproveJoinRequest(request.ID, owner); err != nil {
		t.Fatalf("ApproveJoinRequest() error = %v", err)
	}

	// Rejoining reuses the old row and resets the role to member; the
	// previous admin rank does not come back.
	member := env.member(t, family.ID, rejoiner)
	if member.Status != models.StatusActive {
		t.Errorf("Status = %v, want active", member.Status)
	}
	if member.Role != models.RoleMember {
		t.Errorf("Role = %v, want member", member.Role)
	}
}

func TestRejectJoinRequest(t *testing.T) {
	env := newTestEnv(t)
	svc := newFamilyService(env)
	owner := env.createUser(t, "owner@example.com")
	family, err := svc.CreateFamily("Open House", models.VisibilityPublic, owner)
	if err != nil {
		t.Fatalf("CreateFamily() error = %v", err)
	}
	applicant := env.createUser(t, "applicant@example.com")

	request, err := svc.RequestToJoin(family.ID, applicant)
	if err != nil {
		t.Fatalf("RequestToJoin() error = %v", err)
	}

	if err := svc.RejectJoinRequest(request.ID, owner); err != nil {
		t.Fatalf("RejectJoinRequest() error = %v", err)
	}

	// The requester must not have been admitted.
	member, err := env.familyRepo.GetMember(family.ID, applicant)
	if err != nil {
		t.Fatalf("GetMember() error = %v", err)
	}
	if member != nil {
		t.Errorf("Member row = %+v, want none", member)
	}

	// A rejected applicant may apply again.
	if _, err := svc.RequestToJoin(family.ID, applicant); err != nil {
		t.Errorf("RequestToJoin() after rejection error = %v", err)
	}
}

func TestFamilyAccessControl(t *testing.T) {
	env := newTestEnv(t)
	svc := newFamilyService(env)
	owner := env.createUser(t, "owner@example.com")
	family, err := svc.CreateFamily("Smiths", models.VisibilityPrivate, owner)
	if err != nil {
		t.Fatalf("CreateFamily() error = %v", err)
	}
	viewer := env.createUser(t, "viewer@example.com")
	env.addMember(t, family.ID, viewer, models.RoleViewer)
	stranger := env.createUser(t, "stranger@example.com")

	t.Run("members can read", func(t *testing.T) {
		if err := svc.VerifyFamilyAccess(viewer, family.ID); err != nil {
			t.Errorf("VerifyFamilyAccess(viewer) error = %v", err)
		}
	})

	t.Run("strangers cannot read", func(t *testing.T) {
		if err := svc.VerifyFamilyAccess(stranger, family.ID); !errors.Is(err, ErrNotFamilyMember) {
			t.Errorf("error = %v, want ErrNotFamilyMember", err)
		}
	})

	t.Run("viewer cannot update family", func(t *testing.T) {
		err := svc.UpdateFamily(family.ID, viewer, "Renamed", models.VisibilityPublic)
		if !errors.Is(err, ErrNotPermitted) {
			t.Errorf("error = %v, want ErrNotPermitted", err)
		}
	})

	t.Run("only owner deletes", func(t *testing.T) {
		admin := env.createUser(t, "admin@example.com")
		env.addMember(t, family.ID, admin, models.RoleAdmin)

		if err := svc.DeleteFamily(family.ID, admin); !errors.Is(err, ErrNotPermitted) {
			t.Errorf("error = %v, want ErrNotPermitted", err)
		}
		if err := svc.DeleteFamily(family.ID, owner); err != nil {
			t.Errorf("DeleteFamily(owner) error = %v", err)
		}
		if _, err := svc.GetFamily(family.ID); !errors.Is(err, ErrFamilyNotFound) {
			t.Errorf("error after delete = %v, want ErrFamilyNotFound", err)
		}
	})
}
