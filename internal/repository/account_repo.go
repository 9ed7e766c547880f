package repository

import (
	"AmineForum/internal/model"
	"AmineForum/internal/pkg/consts"
	"AmineForum/internal/pkg/kv"
	"context"
	"sort"
)

// AccountRepo accounts 文档：loginId -> Account
type AccountRepo interface {
	Get(ctx context.Context, loginID string) (*model.Account, error)
	GetByID(ctx context.Context, id string) (*model.Account, error)
	List(ctx context.Context) ([]*model.Account, error)
	// Update 原子读改写单个账户，fn 返回 kv.ErrSkip 时不写入
	Update(ctx context.Context, loginID string, fn func(acc *model.Account, exists bool) error) (*model.Account, error)
}

type AccountRepoImpl struct {
	store kv.Store
}

func NewAccountRepo(store kv.Store) AccountRepo {
	return &AccountRepoImpl{store: store}
}

func (s *AccountRepoImpl) all(ctx context.Context) (map[string]*model.Account, error) {
	accounts := make(map[string]*model.Account)
	if _, err := kv.GetJSON(ctx, s.store, consts.AccountsKey, &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

// Get 不存在时返回 nil
func (s *AccountRepoImpl) Get(ctx context.Context, loginID string) (*model.Account, error) {
	accounts, err := s.all(ctx)
	if err != nil {
		return nil, err
	}
	acc, ok := accounts[loginID]
	if !ok || acc == nil {
		return nil, nil
	}
	if acc.LoginID == "" {
		acc.LoginID = loginID
	}
	return acc, nil
}

func (s *AccountRepoImpl) GetByID(ctx context.Context, id string) (*model.Account, error) {
	if id == "" {
		return nil, nil
	}
	accounts, err := s.all(ctx)
	if err != nil {
		return nil, err
	}
	for loginID, acc := range accounts {
		if acc != nil && acc.ID == id {
			if acc.LoginID == "" {
				acc.LoginID = loginID
			}
			return acc, nil
		}
	}
	return nil, nil
}

func (s *AccountRepoImpl) List(ctx context.Context) ([]*model.Account, error) {
	accounts, err := s.all(ctx)
	if err != nil {
		return nil, err
	}
	list := make([]*model.Account, 0, len(accounts))
	for loginID, acc := range accounts {
		if acc == nil {
			continue
		}
		if acc.LoginID == "" {
			acc.LoginID = loginID
		}
		list = append(list, acc)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].LoginID < list[j].LoginID })
	return list, nil
}

func (s *AccountRepoImpl) Update(ctx context.Context, loginID string, fn func(acc *model.Account, exists bool) error) (*model.Account, error) {
	var result *model.Account
	err := kv.UpdateJSON(ctx, s.store, consts.AccountsKey, func(accounts *map[string]*model.Account) error {
		if *accounts == nil {
			*accounts = make(map[string]*model.Account)
		}
		cur, exists := (*accounts)[loginID]
		if cur == nil {
			exists = false
			cur = &model.Account{LoginID: loginID}
		} else {
			copied := *cur
			cur = &copied
		}
		if err := fn(cur, exists); err != nil {
			if exists {
				result = cur
			}
			return err
		}
		cur.LoginID = loginID
		(*accounts)[loginID] = cur
		result = cur
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
