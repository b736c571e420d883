package container

// Route identifiers handed to the navigation collaborator. The container
// layer knows nothing about URL structure beyond these fixed names.
const (
	RouteLogin   = "/login"
	RouteBills   = "/employee/bills"
	RouteNewBill = "/employee/bills/new"
)
