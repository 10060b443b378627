package service

import (
	"context"
	"errors"
	"strings"

	"github.com/chefpilot/chefpilot-api/internal/domain"
	"github.com/chefpilot/chefpilot-api/internal/store"
	"github.com/chefpilot/chefpilot-api/pkg/idx"
)

var (
	// ErrAlreadyAssociated is returned when a tenant already links to a parent.
	ErrAlreadyAssociated = errors.New("already_associated")

	// ErrParentNotFound is returned when no tenant matches the supplied PIN.
	ErrParentNotFound = errors.New("parent_not_found")

	// ErrSelfAssociation is returned when a tenant's PIN resolves to itself.
	ErrSelfAssociation = errors.New("self_association")
)

// TenantService manages tenants, memberships and the parent-association
// handshake.
type TenantService struct {
	Store store.Store
}

type CreateTenantParams struct {
	Name           string
	Type           string
	PIN            string
	UserLimit      int
	RestaurantType string
}

func (s *TenantService) CreateTenant(ctx context.Context, p CreateTenantParams) (domain.Tenant, error) {
	t := domain.Tenant{
		ID:             idx.New().String(),
		Name:           strings.TrimSpace(p.Name),
		Type:           p.Type,
		UserLimit:      p.UserLimit,
		RestaurantType: p.RestaurantType,
	}
	if p.PIN != "" {
		t.PIN = &p.PIN
	}

	if err := s.Store.Tenants().CreateTenant(ctx, t); err != nil {
		return domain.Tenant{}, err
	}
	return s.Store.Tenants().GetTenantByID(ctx, t.ID)
}

func (s *TenantService) GetTenant(ctx context.Context, id string) (domain.Tenant, error) {
	return s.Store.Tenants().GetTenantByID(ctx, id)
}

func (s *TenantService) ListTenants(ctx context.Context) ([]domain.Tenant, error) {
	return s.Store.Tenants().ListTenants(ctx)
}

func (s *TenantService) UpdateTenant(ctx context.Context, t domain.Tenant) (domain.Tenant, error) {
	if err := s.Store.Tenants().UpdateTenant(ctx, t); err != nil {
		return domain.Tenant{}, err
	}
	return s.Store.Tenants().GetTenantByID(ctx, t.ID)
}

func (s *TenantService) DeleteTenant(ctx context.Context, id string) error {
	return s.Store.Tenants().DeleteTenant(ctx, id)
}

// AssociateParent links a tenant under the parent whose PIN matches. The PIN
// is a shared secret handed over out of band; an unknown PIN reports
// ErrParentNotFound, a tenant that already has a parent reports
// ErrAlreadyAssociated.
func (s *TenantService) AssociateParent(ctx context.Context, tenantID, pin string) (domain.Tenant, error) {
	var result domain.Tenant

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		tenant, err := tx.Tenants().GetTenantByID(ctx, tenantID)
		if err != nil {
			return err
		}
		if tenant.ParentID != nil {
			return ErrAlreadyAssociated
		}

		parent, err := tx.Tenants().GetTenantByPIN(ctx, pin)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrParentNotFound
			}
			return err
		}
		if parent.ID == tenantID {
			return ErrSelfAssociation
		}

		if err := tx.Tenants().SetTenantParent(ctx, tenantID, parent.ID); err != nil {
			return err
		}

		result, err = tx.Tenants().GetTenantByID(ctx, tenantID)
		return err
	})
	if err != nil {
		return domain.Tenant{}, err
	}
	return result, nil
}

// AddMember creates a membership row for (user, tenant).
func (s *TenantService) AddMember(ctx context.Context, userID, tenantID, role string) error {
	return s.Store.Memberships().CreateMembership(ctx, domain.Membership{
		UserID:   userID,
		TenantID: tenantID,
		Role:     role,
	})
}

// RemoveMember deletes the membership row; removing a non-member is a no-op.
func (s *TenantService) RemoveMember(ctx context.Context, userID, tenantID string) error {
	return s.Store.Memberships().DeleteMembership(ctx, userID, tenantID)
}

// ListMemberships returns every tenant the user belongs to.
func (s *TenantService) ListMemberships(ctx context.Context, userID string) ([]domain.Membership, error) {
	return s.Store.Memberships().ListUserMemberships(ctx, userID)
}
