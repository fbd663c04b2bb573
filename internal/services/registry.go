package services

import (
	"context"
	"fmt"
	"log/slog"

	"contas/internal/core"
	"contas/internal/storage"
)

// RegistryService manages the reference records the ledger hangs off:
// accounts, categories and clients/suppliers. Deletes are guarded so a
// record referenced by entries or transactions cannot disappear under
// them.
type RegistryService struct {
	store storage.Store
}

func NewRegistryService(store storage.Store) *RegistryService {
	return &RegistryService{store: store}
}

func (s *RegistryService) CreateAccount(ctx context.Context, a core.Account) (core.Account, error) {
	if err := a.Validate(); err != nil {
		return core.Account{}, err
	}
	// A new account starts with its balance at the declared opening value.
	a.CurrentBalance = a.InitialBalance

	created, err := s.store.CreateAccount(ctx, a)
	if err != nil {
		return core.Account{}, fmt.Errorf("create account: %w", err)
	}

	slog.InfoContext(ctx, "Account created",
		"id", created.ID,
		"name", created.Name,
		"kind", created.Kind,
		"initial_balance", created.InitialBalance.String())
	return created, nil
}

func (s *RegistryService) GetAccount(ctx context.Context, id string) (core.Account, error) {
	return s.store.GetAccount(ctx, id)
}

func (s *RegistryService) ListAccounts(ctx context.Context) ([]core.Account, error) {
	return s.store.ListAccounts(ctx)
}

// UpdateAccount edits the account record. Editing resets the current
// balance to the (possibly changed) initial balance; recorded
// transactions are not replayed.
func (s *RegistryService) UpdateAccount(ctx context.Context, a core.Account) (core.Account, error) {
	if err := a.Validate(); err != nil {
		return core.Account{}, err
	}
	a.CurrentBalance = a.InitialBalance

	updated, err := s.store.UpdateAccount(ctx, a)
	if err != nil {
		return core.Account{}, fmt.Errorf("update account: %w", err)
	}
	return updated, nil
}

func (s *RegistryService) DeleteAccount(ctx context.Context, id string) error {
	used, err := s.store.AccountInUse(ctx, id)
	if err != nil {
		return fmt.Errorf("check account references: %w", err)
	}
	if used {
		return &core.ConflictError{Entity: "account", ID: id, Reason: "referenced by transactions or entries"}
	}
	if err := s.store.DeleteAccount(ctx, id); err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	return nil
}

func (s *RegistryService) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	created, err := s.store.CreateCategory(ctx, c)
	if err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}
	return created, nil
}

func (s *RegistryService) ListCategories(ctx context.Context) ([]core.Category, error) {
	return s.store.ListCategories(ctx)
}

func (s *RegistryService) UpdateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	updated, err := s.store.UpdateCategory(ctx, c)
	if err != nil {
		return core.Category{}, fmt.Errorf("update category: %w", err)
	}
	return updated, nil
}

func (s *RegistryService) DeleteCategory(ctx context.Context, id string) error {
	used, err := s.store.CategoryInUse(ctx, id)
	if err != nil {
		return fmt.Errorf("check category references: %w", err)
	}
	if used {
		return &core.ConflictError{Entity: "category", ID: id, Reason: "referenced by transactions or entries"}
	}
	if err := s.store.DeleteCategory(ctx, id); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}

func (s *RegistryService) CreateClientSupplier(ctx context.Context, cs core.ClientSupplier) (core.ClientSupplier, error) {
	if err := cs.Validate(); err != nil {
		return core.ClientSupplier{}, err
	}
	created, err := s.store.CreateClientSupplier(ctx, cs)
	if err != nil {
		return core.ClientSupplier{}, fmt.Errorf("create client/supplier: %w", err)
	}
	return created, nil
}

func (s *RegistryService) ListClientsSuppliers(ctx context.Context) ([]core.ClientSupplier, error) {
	return s.store.ListClientsSuppliers(ctx)
}

func (s *RegistryService) UpdateClientSupplier(ctx context.Context, cs core.ClientSupplier) (core.ClientSupplier, error) {
	if err := cs.Validate(); err != nil {
		return core.ClientSupplier{}, err
	}
	updated, err := s.store.UpdateClientSupplier(ctx, cs)
	if err != nil {
		return core.ClientSupplier{}, fmt.Errorf("update client/supplier: %w", err)
	}
	return updated, nil
}

func (s *RegistryService) DeleteClientSupplier(ctx context.Context, id string) error {
	used, err := s.store.PartyInUse(ctx, id)
	if err != nil {
		return fmt.Errorf("check client/supplier references: %w", err)
	}
	if used {
		return &core.ConflictError{Entity: "client/supplier", ID: id, Reason: "referenced by transactions or entries"}
	}
	if err := s.store.DeleteClientSupplier(ctx, id); err != nil {
		return fmt.Errorf("delete client/supplier: %w", err)
	}
	return nil
}
