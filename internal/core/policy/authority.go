// Package policy is the role authority: pure functions deciding whether an
// already-resolved actor may act on a user or an article.
//
// Every rule is an explicit table indexed by the actor's role class, the
// target's role class and whether actor and target are the same account, so
// each cell can be read and tested on its own.
package policy

import "github.com/articlehub/content-service/internal/core/domain"

// class is the highest role a user holds.
type class uint8

const (
	classUser class = iota
	classAdmin
	classSuperadmin
	numClasses
)

func classOf(u *domain.User) class {
	switch {
	case u.Roles.Has(domain.RoleSuperadmin):
		return classSuperadmin
	case u.Roles.Has(domain.RoleAdmin):
		return classAdmin
	default:
		return classUser
	}
}

// CanModifyArticle reports whether actor may update or delete article.
func CanModifyArticle(actor *domain.User, article *domain.Article) bool {
	if actor == nil || article == nil {
		return false
	}
	return actor.ID == article.OwnerID || classOf(actor) != classUser
}

// deleteSelf[actor] applies when actor and target are the same account.
var deleteSelf = [numClasses]domain.Decision{
	classUser:       domain.Allow,
	classAdmin:      domain.Allow,
	classSuperadmin: domain.SelfActionForbidden,
}

// deleteOther[actor][target] applies to a present target other than actor.
var deleteOther = [numClasses][numClasses]domain.Decision{
	classUser:       {domain.Deny, domain.Deny, domain.Deny},
	classAdmin:      {domain.Allow, domain.Deny, domain.Deny},
	classSuperadmin: {domain.Allow, domain.Allow, domain.Deny},
}

// CanDeleteUser decides whether actor may deactivate target. A nil target
// means the requested user does not exist; plain users are denied before
// that is revealed.
func CanDeleteUser(actor, target *domain.User) domain.Decision {
	if actor == nil {
		return domain.Deny
	}
	ac := classOf(actor)
	if target != nil && actor.ID == target.ID {
		return deleteSelf[ac]
	}
	if ac == classUser {
		return domain.Deny
	}
	if target == nil {
		return domain.NotFound
	}
	return deleteOther[ac][classOf(target)]
}

// privilegeGate holds the decision for promotion and revocation that does not
// depend on the target's current roles, indexed by actor class and self.
var privilegeGate = [numClasses][2]domain.Decision{
	classUser:       {domain.Forbidden, domain.Forbidden},
	classAdmin:      {domain.Forbidden, domain.Forbidden},
	classSuperadmin: {domain.Allow, domain.SelfActionForbidden},
}

func gatePrivilege(actor, target *domain.User) domain.Decision {
	if actor == nil {
		return domain.Forbidden
	}
	ac := classOf(actor)
	if d := privilegeGate[ac][0]; d != domain.Allow {
		return d
	}
	if target == nil {
		return domain.NotFound
	}
	self := 0
	if actor.ID == target.ID {
		self = 1
	}
	return privilegeGate[ac][self]
}

// promoteByTarget[target] is the decision once the gate passed.
var promoteByTarget = [numClasses]domain.Decision{
	classUser:       domain.Allow,
	classAdmin:      domain.Conflict,
	classSuperadmin: domain.Conflict,
}

// CanPromoteToAdmin decides whether actor may grant ADMIN to target. On Allow
// the second result is the target's new role set; otherwise it is the
// target's current set (or zero for a missing target).
func CanPromoteToAdmin(actor, target *domain.User) (domain.Decision, domain.RoleSet) {
	if d := gatePrivilege(actor, target); d != domain.Allow {
		return d, rolesOf(target)
	}
	if d := promoteByTarget[classOf(target)]; d != domain.Allow {
		return d, target.Roles
	}
	return domain.Allow, target.Roles.With(domain.RoleAdmin)
}

// CanRevokeAdmin decides whether actor may remove ADMIN from target.
// SUPERADMIN on the target is left untouched.
func CanRevokeAdmin(actor, target *domain.User) (domain.Decision, domain.RoleSet) {
	if d := gatePrivilege(actor, target); d != domain.Allow {
		return d, rolesOf(target)
	}
	if !target.Roles.Has(domain.RoleAdmin) {
		return domain.Conflict, target.Roles
	}
	return domain.Allow, target.Roles.Without(domain.RoleAdmin)
}

func rolesOf(u *domain.User) domain.RoleSet {
	if u == nil {
		return 0
	}
	return u.Roles
}
