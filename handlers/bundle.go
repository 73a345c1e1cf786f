package handlers

// HandlerBundle groups the endpoint handlers the router mounts.
type HandlerBundle struct {
	Booking *BookingHandler
	Contact *ContactHandler
	Admin   *AdminHandler
	Health  *HealthHandler
}
