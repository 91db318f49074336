package auth

import (
	"time"

	"github.com/ezinne-pharmarcy/backend/internal/domain"
	"github.com/ezinne-pharmarcy/backend/internal/repository"
)

// Resource names a protected collection.
type Resource string

const (
	ResourceOwner       Resource = "owner"
	ResourceAdminStaff  Resource = "admin_staff"
	ResourceRetailStaff Resource = "retail_staff"
	ResourceMedication  Resource = "medication"
	ResourceCart        Resource = "cart"
	ResourceOrder       Resource = "order"
	ResourceCartItem    Resource = "cart_item"
	ResourceOrderItem   Resource = "order_item"
)

// Action names an operation on a Resource.
type Action string

const (
	ActionCreate   Action = "create"
	ActionList     Action = "list"
	ActionRetrieve Action = "retrieve"
	ActionUpdate   Action = "update"
	ActionDelete   Action = "delete"
)

// Target describes the record an action applies to. For staff resources
// AccountKind/AccountID name the record; for sales and sale items CreatorID
// is the retail staff member who created the sale (or the item's parent).
type Target struct {
	AccountKind domain.AccountKind
	AccountID   string
	CreatorID   string
}

// AccountResource maps an account kind to the resource that manages it.
func AccountResource(kind domain.AccountKind) Resource {
	switch kind {
	case domain.KindOwner:
		return ResourceOwner
	case domain.KindAdminStaff:
		return ResourceAdminStaff
	case domain.KindRetailStaff:
		return ResourceRetailStaff
	default:
		return ""
	}
}

type rule func(identity *domain.Account, target *Target) bool

type permission struct {
	resource Resource
	action   Action
}

var (
	staffRules = map[Action]rule{
		ActionCreate:   storeAdmin,
		ActionList:     storeAdmin,
		ActionRetrieve: anyOf(self, storeAdmin),
		ActionUpdate:   anyOf(self, storeAdmin),
		ActionDelete:   anyOf(self, storeAdmin),
	}
	medicationRules = map[Action]rule{
		ActionCreate:   storeAdmin,
		ActionList:     kinds(domain.KindOwner, domain.KindAdminStaff, domain.KindRetailStaff),
		ActionRetrieve: kinds(domain.KindOwner, domain.KindAdminStaff, domain.KindRetailStaff),
		ActionUpdate:   storeAdmin,
		ActionDelete:   storeAdmin,
	}
	saleRules = map[Action]rule{
		ActionCreate:   kinds(domain.KindRetailStaff),
		ActionList:     kinds(domain.KindOwner, domain.KindAdminStaff, domain.KindRetailStaff),
		ActionRetrieve: anyOf(creator, kinds(domain.KindOwner, domain.KindAdminStaff)),
		ActionDelete:   kinds(domain.KindOwner),
	}
	saleItemRules = map[Action]rule{
		ActionCreate:   creator,
		ActionList:     anyOf(creator, kinds(domain.KindOwner, domain.KindAdminStaff)),
		ActionRetrieve: anyOf(creator, kinds(domain.KindOwner, domain.KindAdminStaff)),
		ActionDelete:   kinds(domain.KindOwner),
	}
)

// policy is the role x action table. Combinations that are absent are denied.
var policy = buildPolicy(map[Resource]map[Action]rule{
	ResourceOwner:       staffRules,
	ResourceAdminStaff:  staffRules,
	ResourceRetailStaff: staffRules,
	ResourceMedication:  medicationRules,
	ResourceCart:        saleRules,
	ResourceOrder:       saleRules,
	ResourceCartItem:    saleItemRules,
	ResourceOrderItem:   saleItemRules,
})

func buildPolicy(src map[Resource]map[Action]rule) map[permission]rule {
	out := make(map[permission]rule)
	for resource, actions := range src {
		for action, r := range actions {
			out[permission{resource: resource, action: action}] = r
		}
	}
	return out
}

// Authorize decides whether identity may perform action on resource. It
// returns nil to allow, ErrUnauthenticated when there is no identity and
// ErrForbidden otherwise. target may be nil for collection-level actions.
func Authorize(identity *domain.Account, resource Resource, action Action, target *Target) error {
	if identity == nil {
		return ErrUnauthenticated
	}
	if !identity.Kind.Valid() {
		return ErrForbidden
	}
	r, ok := policy[permission{resource: resource, action: action}]
	if !ok || !r(identity, target) {
		return ErrForbidden
	}
	return nil
}

// SaleListScope returns the listing filter identity is entitled to: every
// sale for owners and admin staff, and only the caller's own sales created
// on the calendar day of now for retail staff.
func SaleListScope(identity *domain.Account, now time.Time) (repository.SaleFilter, error) {
	if identity == nil {
		return repository.SaleFilter{}, ErrUnauthenticated
	}
	switch identity.Kind {
	case domain.KindOwner, domain.KindAdminStaff:
		return repository.SaleFilter{}, nil
	case domain.KindRetailStaff:
		y, m, d := now.Date()
		start := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
		end := start.AddDate(0, 0, 1)
		return repository.SaleFilter{
			SalesStaffID:  identity.ID,
			CreatedFrom:   &start,
			CreatedBefore: &end,
		}, nil
	default:
		return repository.SaleFilter{}, ErrForbidden
	}
}

func storeAdmin(identity *domain.Account, _ *Target) bool {
	return identity.StoreAdmin()
}

func self(identity *domain.Account, target *Target) bool {
	return target != nil &&
		target.AccountID != "" &&
		target.AccountID == identity.ID &&
		target.AccountKind == identity.Kind
}

func creator(identity *domain.Account, target *Target) bool {
	return identity.Kind == domain.KindRetailStaff &&
		target != nil &&
		target.CreatorID != "" &&
		target.CreatorID == identity.ID
}

func kinds(allowed ...domain.AccountKind) rule {
	return func(identity *domain.Account, _ *Target) bool {
		for _, k := range allowed {
			if identity.Kind == k {
				return true
			}
		}
		return false
	}
}

func anyOf(rules ...rule) rule {
	return func(identity *domain.Account, target *Target) bool {
		for _, r := range rules {
			if r(identity, target) {
				return true
			}
		}
		return false
	}
}
