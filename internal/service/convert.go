package service

import (
	"github.com/mmynk/poinku/internal/models"
	"github.com/mmynk/poinku/pkg/api"
)

func memberToAPI(m *models.Member) *api.Member {
	return &api.Member{
		ID:        m.ID,
		Name:      m.Name,
		Phone:     m.Phone,
		Balance:   m.Balance,
		StoreID:   m.StoreID,
		CreatedAt: m.CreatedAt,
	}
}

func transactionToAPI(t *models.Transaction) *api.Transaction {
	return &api.Transaction{
		ID:          t.ID,
		MemberID:    t.MemberID,
		Kind:        string(t.Kind),
		Points:      t.Points,
		Description: t.Description,
		StoreID:     t.StoreID,
		CreatedAt:   t.CreatedAt,
	}
}

func voucherToAPI(v *models.Voucher) *api.Voucher {
	return &api.Voucher{
		ID:            v.ID,
		Code:          v.Code,
		Status:        string(v.Status),
		PointCost:     v.PointCost,
		MemberID:      v.MemberID,
		RewardID:      v.RewardID,
		CreatedAt:     v.CreatedAt,
		UsedAt:        v.UsedAt,
		RedeemStoreID: v.RedeemStoreID,
		ExpiredAt:     v.ExpiredAt,
	}
}

func voucherDetailsToAPI(d *models.VoucherDetails) *api.Voucher {
	v := voucherToAPI(&d.Voucher)
	v.RewardName = d.RewardName
	v.RewardValue = d.RewardValue
	v.MemberName = d.MemberName
	v.MemberPhone = d.MemberPhone
	v.RedeemStoreName = d.RedeemStoreName
	return v
}

func vouchersToAPI(list []*models.VoucherDetails) []*api.Voucher {
	out := make([]*api.Voucher, 0, len(list))
	for _, d := range list {
		out = append(out, voucherDetailsToAPI(d))
	}
	return out
}

func storeToAPI(s *models.Store) *api.Store {
	return &api.Store{
		ID:        s.ID,
		Name:      s.Name,
		Code:      s.Code,
		Address:   s.Address,
		CreatedAt: s.CreatedAt,
	}
}

func rewardToAPI(r *models.Reward) *api.Reward {
	return &api.Reward{
		ID:        r.ID,
		Name:      r.Name,
		PointCost: r.PointCost,
		Value:     r.Value,
		CreatedAt: r.CreatedAt,
	}
}

func staffToAPI(s *models.Staff) *api.Staff {
	return &api.Staff{
		ID:        s.ID,
		Username:  s.Username,
		Role:      string(s.Role),
		StoreID:   s.StoreID,
		Active:    s.Active,
		CreatedAt: s.CreatedAt,
	}
}
