package customers

import (
	"github.com/jhoicas/orderflow-api/internal/application/dto"
	"github.com/jhoicas/orderflow-api/internal/domain"
	"github.com/jhoicas/orderflow-api/internal/domain/entity"
	"github.com/jhoicas/orderflow-api/internal/domain/repository"
)

// CustomerUseCase lecturas de clientes para el dashboard.
type CustomerUseCase struct {
	customerRepo repository.CustomerRepository
}

// NewCustomerUseCase construye el caso de uso.
func NewCustomerUseCase(customerRepo repository.CustomerRepository) *CustomerUseCase {
	return &CustomerUseCase{customerRepo: customerRepo}
}

// List devuelve los clientes del tenant con sus agregados históricos.
func (uc *CustomerUseCase) List(tenantID string, page dto.PageRequest) ([]*dto.CustomerResponse, error) {
	page.DefaultPage()
	list, err := uc.customerRepo.ListByTenant(tenantID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.CustomerResponse, 0, len(list))
	for _, c := range list {
		out = append(out, toCustomerResponse(c))
	}
	return out, nil
}

// Get devuelve un cliente por ID dentro del tenant.
func (uc *CustomerUseCase) Get(tenantID, id string) (*dto.CustomerResponse, error) {
	c, err := uc.customerRepo.GetByID(tenantID, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}
	return toCustomerResponse(c), nil
}

func toCustomerResponse(c *entity.Customer) *dto.CustomerResponse {
	return &dto.CustomerResponse{
		ID:                 c.ID,
		CompanyName:        c.CompanyName,
		ContactName:        c.ContactName,
		Email:              c.Email,
		Phone:              c.Phone,
		Industry:           c.Industry,
		OrderCount:         c.OrderCount,
		TotalLifetimeValue: c.TotalLifetimeValue,
		AvgOrderAmount:     c.AverageOrderAmount().Round(2),
	}
}
