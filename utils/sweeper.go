package utils

import (
	"time"

	"github.com/examsutra/ExamSutra/models"
	"gorm.io/gorm"
)

// Sweeper periodically demotes stale orders and lapsed purchases, and
// completes settlements that crashed between payment and activation. All of
// its writes are conditional status transitions, so running it more often
// than its period, or alongside another instance, is harmless.
type Sweeper struct {
	db       *gorm.DB
	interval time.Duration
	grace    time.Duration
	stop     chan struct{}
	done     chan struct{}
}

// NewSweeper builds a sweeper. grace is how long an unpaid order may sit in
// CREATED/PENDING before it expires.
func NewSweeper(db *gorm.DB, interval, grace time.Duration) *Sweeper {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	if grace <= 0 {
		grace = 30 * time.Minute
	}
	return &Sweeper{
		db:       db,
		interval: interval,
		grace:    grace,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start runs the sweep loop in a background goroutine.
func (s *Sweeper) Start() {
	go s.loop()
}

// Stop signals the loop to exit and waits for it.
func (s *Sweeper) Stop() {
	close(s.stop)
	<-s.done
}

func (s *Sweeper) loop() {
	ticker := time.NewTicker(s.interval)
	defer func() {
		ticker.Stop()
		close(s.done)
	}()

	LogInfo("Expiry sweeper started with interval %v, grace window %v", s.interval, s.grace)
	for {
		select {
		case <-s.stop:
			LogInfo("Expiry sweeper stopping")
			return
		case <-ticker.C:
			s.RunOnce()
		}
	}
}

// RunOnce executes one sweep pass.
func (s *Sweeper) RunOnce() {
	if n, err := SweepExpiredOrders(s.db, s.grace); err != nil {
		LogError("Order sweep failed: %v", err)
	} else if n > 0 {
		LogInfo("Order sweep expired %d stale orders", n)
	}

	if n, err := SweepExpiredPurchases(s.db); err != nil {
		LogError("Purchase sweep failed: %v", err)
	} else if n > 0 {
		LogInfo("Purchase sweep expired %d lapsed purchases", n)
	}

	if n, err := ReconcilePaidOrders(s.db); err != nil {
		LogError("Settlement reconciliation failed: %v", err)
	} else if n > 0 {
		LogError("Reconciliation completed %d settlements left PAID without an entitlement", n)
	}
}

// SweepExpiredOrders transitions orders stuck in CREATED/PENDING for longer
// than the grace window to EXPIRED. Returns how many it expired.
func SweepExpiredOrders(db *gorm.DB, grace time.Duration) (int, error) {
	cutoff := time.Now().Add(-grace)

	var orders []models.Order
	err := db.Where("status IN ? AND created_at < ?",
		[]string{models.OrderStatusCreated, models.OrderStatusPending}, cutoff).
		Find(&orders).Error
	if err != nil {
		return 0, err
	}

	expired := 0
	for i := range orders {
		order := &orders[i]
		if err := TransitionOrder(db, order, models.OrderStatusExpired, "never paid within grace window"); err != nil {
			if err == ErrStaleTransition {
				continue // someone else moved it; nothing to do
			}
			return expired, err
		}
		expired++
	}
	return expired, nil
}

// SweepExpiredPurchases transitions ACTIVE purchases whose expiry has passed
// to EXPIRED. Returns how many it expired.
func SweepExpiredPurchases(db *gorm.DB) (int, error) {
	var purchases []models.UserPurchase
	err := db.Where("status = ? AND expires_at < ?", models.PurchaseStatusActive, time.Now()).
		Find(&purchases).Error
	if err != nil {
		return 0, err
	}

	expired := 0
	for i := range purchases {
		before := purchases[i].Status
		if err := ExpirePurchase(db, &purchases[i]); err != nil {
			return expired, err
		}
		if before == models.PurchaseStatusActive && purchases[i].Status == models.PurchaseStatusExpired {
			expired++
		}
	}
	return expired, nil
}

// ReconcilePaidOrders finds orders that are PAID but have no purchase row:
// the crash window between recording a payment and activating the
// entitlement. It completes the activation so a paying customer is never
// silently left without access.
func ReconcilePaidOrders(db *gorm.DB) (int, error) {
	var orders []models.Order
	err := db.Where("status = ? AND id NOT IN (?)",
		models.OrderStatusPaid,
		db.Model(&models.UserPurchase{}).Select("order_id")).
		Find(&orders).Error
	if err != nil {
		return 0, err
	}

	recovered := 0
	for i := range orders {
		order := &orders[i]
		var payment models.Payment
		if err := db.Where("order_id = ?", order.ID).First(&payment).Error; err != nil {
			// PAID with no payment row should be impossible; flag loudly
			// and leave it for a human.
			LogError("Invariant violation: order %d is PAID with no payment record: %v", order.ID, err)
			continue
		}
		if _, err := ActivatePurchase(db, order, &payment); err != nil {
			if err == ErrAlreadyActive {
				continue
			}
			return recovered, err
		}
		recovered++
	}
	return recovered, nil
}
