package repository

// TxRepos agrupa los repositorios atados a una misma transacción.
type TxRepos struct {
	Accounts  AccountRepository
	Products  ProductRepository
	Carts     CartRepository
	Orders    OrderRepository
	Billing   BillingRepository
	Dispatch  DispatchRepository
	Checkouts IdempotencyRepository
}
