package service

import (
	"umuhinzilink/internal/domain/model"
	"umuhinzilink/internal/store"
)

// NewStoreSourcesはロールごとに、どの一覧をどこから取るかを決める
func NewStoreSources(products *ProductService, orders *OrderService, users *UserService, suppliers *SupplierService, sampleMessages bool) store.Sources {
	src := store.Sources{
		Products: func(role model.Role) store.Loader[model.Product] {
			switch role {
			case model.RoleFarmer:
				return products.ListFarmer
			case model.RoleSupplier:
				return products.ListSupplier
			default:
				return products.ListAll
			}
		},
		Orders: func(role model.Role) store.Loader[model.Order] {
			switch role {
			case model.RoleFarmer:
				return orders.ListFarmer
			case model.RoleSupplier:
				return orders.ListSupplier
			case model.RoleBuyer:
				return orders.ListBuyer
			default:
				return orders.ListAll
			}
		},
		Users: func(role model.Role) store.Loader[model.User] {
			if role != model.RoleAdmin {
				return nil
			}
			return users.List
		},
		Suppliers: func(role model.Role) store.Loader[model.Supplier] {
			if role == model.RoleGovernment {
				return nil
			}
			return suppliers.List
		},
	}
	if sampleMessages {
		src.Conversations = store.SampleConversations
	}
	return src
}
