package tests

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"fueldash/internal/domain"
	"fueldash/internal/redis"
	"fueldash/internal/repository"
)

// ──────────────────────────────────────────────
// MOCK ORDER REPOSITORY
// ──────────────────────────────────────────────

// MockOrderRepository is a mock implementation of OrderRepository. The
// conditional methods hold the mutex across check-and-write so they are
// atomic the same way the SQL conditional UPDATEs are.
type MockOrderRepository struct {
	mu     sync.RWMutex
	orders map[string]*domain.Order

	// Counters for verification
	CreateCallCount        int32
	AssignCallCount        int32
	RevertCallCount        int32
	UpdatePricingCallCount int32

	// Error injection
	CreateError        error
	AssignError        error
	RevertError        error
	UpdatePricingError error
}

// NewMockOrderRepository creates a new mock order repository.
func NewMockOrderRepository() *MockOrderRepository {
	return &MockOrderRepository{
		orders: make(map[string]*domain.Order),
	}
}

// AddOrder adds an order to the mock repository.
func (m *MockOrderRepository) AddOrder(order *domain.Order) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders[order.ID] = order
}

func (m *MockOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders[order.ID] = order
	return nil
}

func (m *MockOrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	order, ok := m.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	// Return a copy to avoid mutation issues.
	copy := *order
	return &copy, nil
}

func (m *MockOrderRepository) GetAll(ctx context.Context) ([]*domain.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Order, 0, len(m.orders))
	for _, o := range m.orders {
		copy := *o
		result = append(result, &copy)
	}
	return result, nil
}

func (m *MockOrderRepository) AssignDriverIf(ctx context.Context, id string, driverID string, deliveryTime time.Time, expected domain.OrderStatus) (bool, error) {
	atomic.AddInt32(&m.AssignCallCount, 1)
	if m.AssignError != nil {
		return false, m.AssignError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.orders[id]
	if !ok || order.Status != expected {
		return false, nil
	}
	order.Status = domain.OrderStatusAssigned
	order.AssignedDriverID = driverID
	order.ConfirmedDeliveryTime = deliveryTime
	return true, nil
}

func (m *MockOrderRepository) RevertAssignment(ctx context.Context, id string, to domain.OrderStatus) error {
	atomic.AddInt32(&m.RevertCallCount, 1)
	if m.RevertError != nil {
		return m.RevertError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.orders[id]
	if !ok {
		return repository.ErrNotFound
	}
	order.Status = to
	order.AssignedDriverID = ""
	order.ConfirmedDeliveryTime = time.Time{}
	return nil
}

func (m *MockOrderRepository) UpdateStatusIf(ctx context.Context, id string, expected, to domain.OrderStatus) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.orders[id]
	if !ok || order.Status != expected {
		return false, nil
	}
	order.Status = to
	return true, nil
}

func (m *MockOrderRepository) Cancel(ctx context.Context, id string, expected domain.OrderStatus, at time.Time, reason string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.orders[id]
	if !ok || order.Status != expected {
		return false, nil
	}
	order.Status = domain.OrderStatusCancelled
	order.CancelledAt = at
	order.CancelReason = reason
	order.AssignedDriverID = ""
	return true, nil
}

func (m *MockOrderRepository) UpdatePricing(ctx context.Context, id string, pricing repository.OrderPricing) error {
	atomic.AddInt32(&m.UpdatePricingCallCount, 1)
	if m.UpdatePricingError != nil {
		return m.UpdatePricingError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.orders[id]
	if !ok {
		return repository.ErrNotFound
	}
	order.FuelCostCents = pricing.FuelCostCents
	order.DeliveryFeeCents = pricing.DeliveryFeeCents
	order.ServiceFeeCents = pricing.ServiceFeeCents
	order.TotalCents = pricing.TotalCents
	return nil
}

// GetOrder returns the order by ID (for test assertions).
func (m *MockOrderRepository) GetOrder(id string) *domain.Order {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.orders[id]
}

// CountOrders returns the number of orders.
func (m *MockOrderRepository) CountOrders() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.orders)
}

// ──────────────────────────────────────────────
// MOCK OFFER REPOSITORY
// ──────────────────────────────────────────────

// MockOfferRepository is a mock implementation of OfferRepository.
// CreateBatch skips (order, driver) pairs that already exist, matching
// the conflict-ignoring insert semantics.
type MockOfferRepository struct {
	mu     sync.RWMutex
	offers map[string]*domain.DispatchOffer

	// Counters
	CreateBatchCallCount int32
	SweepCallCount       int32

	// Error injection
	CreateBatchError    error
	UpdateStatusIfError error
	SweepError          error
}

// NewMockOfferRepository creates a new mock offer repository.
func NewMockOfferRepository() *MockOfferRepository {
	return &MockOfferRepository{
		offers: make(map[string]*domain.DispatchOffer),
	}
}

// AddOffer adds an offer to the mock repository.
func (m *MockOfferRepository) AddOffer(offer *domain.DispatchOffer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.offers[offer.ID] = offer
}

func (m *MockOfferRepository) CreateBatch(ctx context.Context, offers []*domain.DispatchOffer) (int64, error) {
	atomic.AddInt32(&m.CreateBatchCallCount, 1)
	if m.CreateBatchError != nil {
		return 0, m.CreateBatchError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var inserted int64
	for _, offer := range offers {
		if m.hasPairLocked(offer.OrderID, offer.DriverID) {
			continue
		}
		copy := *offer
		m.offers[offer.ID] = &copy
		inserted++
	}
	return inserted, nil
}

func (m *MockOfferRepository) hasPairLocked(orderID, driverID string) bool {
	for _, o := range m.offers {
		if o.OrderID == orderID && o.DriverID == driverID {
			return true
		}
	}
	return false
}

func (m *MockOfferRepository) GetByID(ctx context.Context, id string) (*domain.DispatchOffer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	offer, ok := m.offers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *offer
	return &copy, nil
}

func (m *MockOfferRepository) ListByOrder(ctx context.Context, orderID string) ([]*domain.DispatchOffer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.DispatchOffer
	for _, o := range m.offers {
		if o.OrderID == orderID {
			copy := *o
			result = append(result, &copy)
		}
	}
	return result, nil
}

func (m *MockOfferRepository) ListOpenByDriver(ctx context.Context, driverID string, now time.Time) ([]*domain.DispatchOffer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.DispatchOffer
	for _, o := range m.offers {
		if o.DriverID == driverID && o.Status == domain.OfferStatusOffered && !o.Expired(now) {
			copy := *o
			result = append(result, &copy)
		}
	}
	return result, nil
}

func (m *MockOfferRepository) UpdateStatusIf(ctx context.Context, id string, expected, to domain.OfferStatus) (bool, error) {
	if m.UpdateStatusIfError != nil {
		return false, m.UpdateStatusIfError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	offer, ok := m.offers[id]
	if !ok || offer.Status != expected {
		return false, nil
	}
	offer.Status = to
	return true, nil
}

func (m *MockOfferRepository) UpdateRate(ctx context.Context, id string, rateCents int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	offer, ok := m.offers[id]
	if !ok {
		return repository.ErrNotFound
	}
	offer.RateCents = rateCents
	return nil
}

func (m *MockOfferRepository) RejectOpenSiblings(ctx context.Context, orderID, winnerOfferID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var affected int64
	for _, o := range m.offers {
		if o.OrderID == orderID && o.ID != winnerOfferID && o.Status == domain.OfferStatusOffered {
			o.Status = domain.OfferStatusRejected
			affected++
		}
	}
	return affected, nil
}

func (m *MockOfferRepository) SweepExpired(ctx context.Context, now time.Time) (int64, error) {
	atomic.AddInt32(&m.SweepCallCount, 1)
	if m.SweepError != nil {
		return 0, m.SweepError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var affected int64
	for _, o := range m.offers {
		if o.Status == domain.OfferStatusOffered && o.Expired(now) {
			o.Status = domain.OfferStatusTimeout
			affected++
		}
	}
	return affected, nil
}

// GetOffer returns the offer by ID (for test assertions).
func (m *MockOfferRepository) GetOffer(id string) *domain.DispatchOffer {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.offers[id]
}

// OffersForOrder returns all offers for an order (for assertions).
func (m *MockOfferRepository) OffersForOrder(orderID string) []*domain.DispatchOffer {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.DispatchOffer
	for _, o := range m.offers {
		if o.OrderID == orderID {
			result = append(result, o)
		}
	}
	return result
}

// CountOffers returns the number of offers.
func (m *MockOfferRepository) CountOffers() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.offers)
}

// CountByStatus counts offers in the given state.
func (m *MockOfferRepository) CountByStatus(status domain.OfferStatus) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, o := range m.offers {
		if o.Status == status {
			count++
		}
	}
	return count
}

// ──────────────────────────────────────────────
// MOCK DRIVER REPOSITORY
// ──────────────────────────────────────────────

// MockDriverRepository is a mock implementation of DriverRepository.
type MockDriverRepository struct {
	mu      sync.RWMutex
	drivers map[string]*domain.Driver

	// Counters
	CreateCallCount             int32
	UpdateAvailabilityCallCount int32

	// Error injection
	CreateError             error
	UpdateAvailabilityError error
	ListEligibleError       error
}

// NewMockDriverRepository creates a new mock driver repository.
func NewMockDriverRepository() *MockDriverRepository {
	return &MockDriverRepository{
		drivers: make(map[string]*domain.Driver),
	}
}

// AddDriver adds a driver to the mock repository.
func (m *MockDriverRepository) AddDriver(driver *domain.Driver) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drivers[driver.ID] = driver
}

func (m *MockDriverRepository) Create(ctx context.Context, driver *domain.Driver) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drivers[driver.ID] = driver
	return nil
}

func (m *MockDriverRepository) GetByID(ctx context.Context, id string) (*domain.Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	driver, ok := m.drivers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *driver
	return &copy, nil
}

func (m *MockDriverRepository) GetByPhone(ctx context.Context, phone string) (*domain.Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, d := range m.drivers {
		if d.Phone == phone {
			copy := *d
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockDriverRepository) GetAll(ctx context.Context) ([]*domain.Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Driver, 0, len(m.drivers))
	for _, d := range m.drivers {
		copy := *d
		result = append(result, &copy)
	}
	return result, nil
}

func (m *MockDriverRepository) ListEligible(ctx context.Context) ([]*domain.Driver, error) {
	if m.ListEligibleError != nil {
		return nil, m.ListEligibleError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Driver
	for _, d := range m.drivers {
		if d.Eligible() {
			copy := *d
			result = append(result, &copy)
		}
	}
	return result, nil
}

func (m *MockDriverRepository) UpdateAvailability(ctx context.Context, id string, availability domain.DriverAvailability) error {
	atomic.AddInt32(&m.UpdateAvailabilityCallCount, 1)
	if m.UpdateAvailabilityError != nil {
		return m.UpdateAvailabilityError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	driver, ok := m.drivers[id]
	if !ok {
		return repository.ErrNotFound
	}
	driver.Availability = availability
	return nil
}

// GetDriver returns driver for test assertions.
func (m *MockDriverRepository) GetDriver(id string) *domain.Driver {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.drivers[id]
}

// ──────────────────────────────────────────────
// MOCK FUEL PRICE REPOSITORY
// ──────────────────────────────────────────────

// MockFuelPriceRepository is a mock implementation of FuelPriceRepository.
type MockFuelPriceRepository struct {
	mu     sync.RWMutex
	prices map[string]int64

	// Counters
	GetCallCount int32

	// Error injection
	GetError error
}

// NewMockFuelPriceRepository creates a new mock fuel price repository.
func NewMockFuelPriceRepository() *MockFuelPriceRepository {
	return &MockFuelPriceRepository{
		prices: make(map[string]int64),
	}
}

// SetPrice sets the active price for a (driver, fuel type) pair.
func (m *MockFuelPriceRepository) SetPrice(driverID, fuelTypeID string, cents int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prices[driverID+":"+fuelTypeID] = cents
}

func (m *MockFuelPriceRepository) GetActivePriceCents(ctx context.Context, driverID, fuelTypeID string) (int64, error) {
	atomic.AddInt32(&m.GetCallCount, 1)
	if m.GetError != nil {
		return 0, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	cents, ok := m.prices[driverID+":"+fuelTypeID]
	if !ok {
		return 0, repository.ErrNotFound
	}
	return cents, nil
}

// ──────────────────────────────────────────────
// MOCK NOTIFICATION REPOSITORY
// ──────────────────────────────────────────────

// MockNotificationRepository is a mock implementation of NotificationRepository.
type MockNotificationRepository struct {
	mu            sync.RWMutex
	notifications []*domain.Notification

	// Counters
	CreateCallCount   int32
	MarkSentCallCount int32

	// Error injection
	CreateError   error
	MarkSentError error
}

// NewMockNotificationRepository creates a new mock notification repository.
func NewMockNotificationRepository() *MockNotificationRepository {
	return &MockNotificationRepository{}
}

func (m *MockNotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *n
	m.notifications = append(m.notifications, &copy)
	return nil
}

func (m *MockNotificationRepository) MarkSent(ctx context.Context, id string) error {
	atomic.AddInt32(&m.MarkSentCallCount, 1)
	if m.MarkSentError != nil {
		return m.MarkSentError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range m.notifications {
		if n.ID == id {
			n.DeliveryStatus = domain.DeliverySent
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *MockNotificationRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*domain.Notification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Notification
	for i := len(m.notifications) - 1; i >= 0 && len(result) < limit; i-- {
		if m.notifications[i].UserID == userID {
			copy := *m.notifications[i]
			result = append(result, &copy)
		}
	}
	return result, nil
}

// ForUser returns all stored notifications for a user (for assertions).
func (m *MockNotificationRepository) ForUser(userID string) []*domain.Notification {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Notification
	for _, n := range m.notifications {
		if n.UserID == userID {
			result = append(result, n)
		}
	}
	return result
}

// CountNotifications returns the number of stored notifications.
func (m *MockNotificationRepository) CountNotifications() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.notifications)
}

// ──────────────────────────────────────────────
// MOCK DEVICE TOKEN REPOSITORY
// ──────────────────────────────────────────────

// MockDeviceTokenRepository is a mock implementation of DeviceTokenRepository.
type MockDeviceTokenRepository struct {
	mu     sync.RWMutex
	tokens map[string][]string
}

// NewMockDeviceTokenRepository creates a new mock device token repository.
func NewMockDeviceTokenRepository() *MockDeviceTokenRepository {
	return &MockDeviceTokenRepository{
		tokens: make(map[string][]string),
	}
}

func (m *MockDeviceTokenRepository) Save(ctx context.Context, userID, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tokens[userID] {
		if t == token {
			return nil
		}
	}
	m.tokens[userID] = append(m.tokens[userID], token)
	return nil
}

func (m *MockDeviceTokenRepository) ListByUser(ctx context.Context, userID string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]string, len(m.tokens[userID]))
	copy(result, m.tokens[userID])
	return result, nil
}

// ──────────────────────────────────────────────
// MOCK LOCATION STORE
// ──────────────────────────────────────────────

// MockLocationStore is a mock implementation of LocationStoreInterface.
type MockLocationStore struct {
	mu        sync.RWMutex
	locations []redis.DriverLocation

	// Counters
	UpdateLocationCallCount int32

	// Error injection
	UpdateLocationError    error
	FindNearbyDriversError error
}

// NewMockLocationStore creates a new mock location store.
func NewMockLocationStore() *MockLocationStore {
	return &MockLocationStore{
		locations: make([]redis.DriverLocation, 0),
	}
}

// AddDriverLocation adds a driver location to the mock store.
func (m *MockLocationStore) AddDriverLocation(loc redis.DriverLocation) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.locations = append(m.locations, loc)
}

func (m *MockLocationStore) UpdateLocation(ctx context.Context, driverID string, lat, lng float64) error {
	atomic.AddInt32(&m.UpdateLocationCallCount, 1)
	if m.UpdateLocationError != nil {
		return m.UpdateLocationError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, loc := range m.locations {
		if loc.DriverID == driverID {
			m.locations[i].Lat = lat
			m.locations[i].Lng = lng
			return nil
		}
	}
	m.locations = append(m.locations, redis.DriverLocation{
		DriverID: driverID,
		Lat:      lat,
		Lng:      lng,
	})
	return nil
}

func (m *MockLocationStore) GetLocation(ctx context.Context, driverID string) (*redis.DriverLocation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, loc := range m.locations {
		if loc.DriverID == driverID {
			copy := loc
			return &copy, nil
		}
	}
	return nil, nil
}

func (m *MockLocationStore) FindNearbyDrivers(ctx context.Context, lat, lng, radiusKm float64) ([]redis.DriverLocation, error) {
	if m.FindNearbyDriversError != nil {
		return nil, m.FindNearbyDriversError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	// Return all locations (mock doesn't do real geo filtering).
	result := make([]redis.DriverLocation, len(m.locations))
	copy(result, m.locations)
	return result, nil
}

func (m *MockLocationStore) RemoveLocation(ctx context.Context, driverID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, loc := range m.locations {
		if loc.DriverID == driverID {
			m.locations = append(m.locations[:i], m.locations[i+1:]...)
			return nil
		}
	}
	return nil
}

// HasLocation checks if a driver location exists.
func (m *MockLocationStore) HasLocation(driverID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, loc := range m.locations {
		if loc.DriverID == driverID {
			return true
		}
	}
	return false
}

// ──────────────────────────────────────────────
// MOCK LOCK STORE
// ──────────────────────────────────────────────

// MockLockStore is a mock implementation of LockStoreInterface.
type MockLockStore struct {
	mu    sync.Mutex
	locks map[string]time.Time

	// Counters
	AcquireCallCount int32
	ReleaseCallCount int32

	// Error injection
	AcquireError error

	// Force lock failure
	ForceAcquireFailure bool
}

// NewMockLockStore creates a new mock lock store.
func NewMockLockStore() *MockLockStore {
	return &MockLockStore{
		locks: make(map[string]time.Time),
	}
}

func (m *MockLockStore) AcquireDispatchLock(ctx context.Context, orderID string, ttl time.Duration) (bool, error) {
	atomic.AddInt32(&m.AcquireCallCount, 1)
	if m.AcquireError != nil {
		return false, m.AcquireError
	}
	if m.ForceAcquireFailure {
		return false, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	key := "lock:dispatch:" + orderID
	if expiry, exists := m.locks[key]; exists {
		if time.Now().Before(expiry) {
			return false, nil // Lock still held.
		}
	}

	m.locks[key] = time.Now().Add(ttl)
	return true, nil
}

func (m *MockLockStore) ReleaseDispatchLock(ctx context.Context, orderID string) error {
	atomic.AddInt32(&m.ReleaseCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locks, "lock:dispatch:"+orderID)
	return nil
}

// IsLocked checks if an order's dispatch is locked (for assertions).
func (m *MockLockStore) IsLocked(orderID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	expiry, exists := m.locks["lock:dispatch:"+orderID]
	return exists && time.Now().Before(expiry)
}

// ──────────────────────────────────────────────
// MOCK LIVE CHANNEL AND PUSH CLIENT
// ──────────────────────────────────────────────

// MockLiveChannel is a mock implementation of LiveChannel.
type MockLiveChannel struct {
	mu       sync.Mutex
	payloads map[string][]any

	// Connected controls whether Send reports delivery.
	Connected bool

	// Counters
	SendCallCount int32
}

// NewMockLiveChannel creates a new mock live channel.
func NewMockLiveChannel(connected bool) *MockLiveChannel {
	return &MockLiveChannel{
		payloads:  make(map[string][]any),
		Connected: connected,
	}
}

func (m *MockLiveChannel) Send(userID string, payload any) bool {
	atomic.AddInt32(&m.SendCallCount, 1)
	if !m.Connected {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payloads[userID] = append(m.payloads[userID], payload)
	return true
}

// SentTo returns the payloads delivered to a user.
func (m *MockLiveChannel) SentTo(userID string) []any {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.payloads[userID]
}

// MockPushClient is a mock implementation of push.Client.
type MockPushClient struct {
	mu     sync.Mutex
	tokens []string

	// Error injection
	SendError error

	// Counters
	SendCallCount int32
}

// NewMockPushClient creates a new mock push client.
func NewMockPushClient() *MockPushClient {
	return &MockPushClient{}
}

func (m *MockPushClient) Send(ctx context.Context, deviceToken string, n *domain.Notification) error {
	atomic.AddInt32(&m.SendCallCount, 1)
	if m.SendError != nil {
		return m.SendError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens = append(m.tokens, deviceToken)
	return nil
}

// PushedTokens returns the tokens pushed to (for assertions).
func (m *MockPushClient) PushedTokens() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tokens
}

// ──────────────────────────────────────────────
// HELPER ERRORS
// ──────────────────────────────────────────────

var (
	ErrMockDBConstraint = errors.New("mock: unique constraint violation")
	ErrMockTimeout      = errors.New("mock: operation timeout")
)
