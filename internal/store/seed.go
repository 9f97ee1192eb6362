package store

import (
	"github.com/amflabs/stockpilot/internal/domain"
	"github.com/amflabs/stockpilot/pkg/common"
)

// DefaultAvatar is used for accounts and audit entries without one.
const DefaultAvatar = "/static/avatar-default.png"

// Seed data written on first start, mirroring a small demo catalog so the
// dashboard is usable out of the box.

// SeedDump returns the factory-default contents of all six collections.
func SeedDump(salt string) Dump {
	return Dump{
		Products:     seedProducts(),
		Customers:    seedCustomers(),
		Users:        seedUsers(salt),
		Receipts:     []domain.Receipt{},
		StoreInfo:    seedStoreInfo(),
		ActivityLogs: []domain.ActivityLog{},
	}
}

func seedProducts() []domain.Product {
	return []domain.Product{
		{ID: "PROD001", Name: "Industrial Widget", Category: "Widgets", Stock: 150, PriceRetail: 25.99, PriceWholesale: 20.99, PricePurchase: 15.00},
		{ID: "PROD002", Name: "Heavy-Duty Gear", Category: "Gears", Stock: 75, PriceRetail: 120.50, PriceWholesale: 95.50, PricePurchase: 70.00},
		{ID: "PROD003", Name: "Micro-Controller Unit", Category: "Electronics", Stock: 300, PriceRetail: 45.00, PriceWholesale: 38.00, PricePurchase: 25.00},
		{ID: "PROD004", Name: "Hydraulic Piston", Category: "Hydraulics", Stock: 40, PriceRetail: 350.75, PriceWholesale: 280.75, PricePurchase: 200.00},
		{ID: "PROD005", Name: "Conveyor Belt Roll", Category: "Conveyors", Stock: 20, PriceRetail: 899.99, PriceWholesale: 750.00, PricePurchase: 600.00},
		{ID: "PROD006", Name: "Safety Goggles (12-pack)", Category: "Safety", Stock: 250, PriceRetail: 30.00, PriceWholesale: 24.00, PricePurchase: 18.00},
		{ID: "PROD007", Name: "Precision Bearing", Category: "Gears", Stock: 500, PriceRetail: 15.25, PriceWholesale: 12.00, PricePurchase: 8.50},
		{ID: "PROD008", Name: "Power Supply Unit", Category: "Electronics", Stock: 120, PriceRetail: 75.00, PriceWholesale: 60.00, PricePurchase: 45.00},
	}
}

func seedCustomers() []domain.Customer {
	return []domain.Customer{
		{ID: "CUST001", Name: "Global Manufacturing Inc.", Type: domain.CustomerWholesale, Email: "purchasing@globalmfg.com", Phone: "555-0101", PurchaseHistory: 150234.50},
		{ID: "CUST002", Name: "Local Hardware", Type: domain.CustomerRetail, Email: "contact@localhardware.com", Phone: "555-0102", PurchaseHistory: 7845.20},
		{ID: "CUST003", Name: "Construct-A-Lot Corp.", Type: domain.CustomerWholesale, Email: "supplies@constructalot.com", Phone: "555-0103", PurchaseHistory: 345890.00},
		{ID: "CUST004", Name: "DIY Central", Type: domain.CustomerRetail, Email: "help@diycentral.com", Phone: "555-0104", PurchaseHistory: 1234.99},
		{ID: "CUST005", Name: "Tech Solutions Ltd.", Type: domain.CustomerWholesale, Email: "orders@techsolutions.net", Phone: "555-0105", PurchaseHistory: 89056.75},
	}
}

// seedUsers creates the default supervisor/employee accounts. The well
// known default password is logged nowhere; operators should change it.
func seedUsers(salt string) []domain.User {
	digest := common.Sha256HashWithSalt("password", salt)
	return []domain.User{
		{ID: "USER001", Username: "supervisor", Role: domain.RoleSupervisor, Password: digest, Avatar: DefaultAvatar},
		{ID: "USER002", Username: "employee", Role: domain.RoleEmployee, Password: digest, Avatar: DefaultAvatar},
	}
}

func seedStoreInfo() domain.StoreInfo {
	return domain.StoreInfo{
		Name:    "AMF Logistic",
		Address: "123 Industrial Way, Logistown",
		Logo:    "",
	}
}
