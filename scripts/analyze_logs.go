package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"
)

type LogStats struct {
	TotalErrors          int
	SettledOrders        int
	SettlementFailures   int
	SignatureRejections  int
	DuplicatePurchases   int
	RepeatedVerification int
	CouponsApplied       int
	CouponsRejected      int
	SweptOrders          int
	SweptPurchases       int
	InvariantViolations  int
	UserActivities       map[string]int
	ErrorPatterns        map[string]int
}

func main() {
	// Get today's date for log file names
	today := time.Now().Format("2006-01-02")
	logDir := "./logs"

	// Initialize stats
	stats := &LogStats{
		UserActivities: make(map[string]int),
		ErrorPatterns:  make(map[string]int),
	}

	// Analyze error logs
	analyzeErrorLogs(filepath.Join(logDir, fmt.Sprintf("error-%s.log", today)), stats)

	// Analyze info logs
	analyzeInfoLogs(filepath.Join(logDir, fmt.Sprintf("info-%s.log", today)), stats)

	// Print report
	printReport(stats)
}

func analyzeErrorLogs(logFile string, stats *LogStats) {
	file, err := os.Open(logFile)
	if err != nil {
		fmt.Printf("Error opening log file %s: %v\n", logFile, err)
		return
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		stats.TotalErrors++

		// Count rejected gateway callbacks
		if strings.Contains(line, "Signature verification failed") {
			stats.SignatureRejections++
			extractUserActivity(line, stats)
		}

		// Count failed settlements
		if strings.Contains(line, "Settlement failed") {
			stats.SettlementFailures++
		}

		// Count blocked double purchases
		if strings.Contains(line, "Duplicate purchase attempt") {
			stats.DuplicatePurchases++
			extractUserActivity(line, stats)
		}

		// Count settlements the reconciler had to finish
		if strings.Contains(line, "Invariant violation") ||
			strings.Contains(line, "left PAID without an entitlement") {
			stats.InvariantViolations++
		}

		// Extract error patterns
		extractErrorPattern(line, stats)
	}
}

func analyzeInfoLogs(logFile string, stats *LogStats) {
	file, err := os.Open(logFile)
	if err != nil {
		fmt.Printf("Error opening log file %s: %v\n", logFile, err)
		return
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()

		// Count settled orders
		if strings.Contains(line, "Settled order") {
			stats.SettledOrders++
			extractUserActivity(line, stats)
		}

		// Count duplicate verify callbacks answered from the ledger
		if strings.Contains(line, "Repeated verification for payment") {
			stats.RepeatedVerification++
		}

		// Count coupon activity
		if strings.Contains(line, "applied for user") {
			stats.CouponsApplied++
			extractUserActivity(line, stats)
		}
		if strings.Contains(line, "rejected for user") {
			stats.CouponsRejected++
		}

		// Count sweeper activity
		if m := sweepCount(line, "Order sweep expired"); m > 0 {
			stats.SweptOrders += m
		}
		if m := sweepCount(line, "Purchase sweep expired"); m > 0 {
			stats.SweptPurchases += m
		}
	}
}

// sweepCount pulls the count out of lines like "Order sweep expired 3 stale orders"
func sweepCount(line, prefix string) int {
	idx := strings.Index(line, prefix)
	if idx < 0 {
		return 0
	}
	rest := strings.TrimSpace(line[idx+len(prefix):])
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return 0
	}
	var n int
	if _, err := fmt.Sscanf(fields[0], "%d", &n); err != nil {
		return 0
	}
	return n
}

func extractUserActivity(line string, stats *LogStats) {
	// Extract user id from log line
	userRegex := regexp.MustCompile(`user ID: (\d+)`)
	if m := userRegex.FindStringSubmatch(line); len(m) == 2 {
		stats.UserActivities[m[1]]++
	}
}

func extractErrorPattern(line string, stats *LogStats) {
	// Extract the main error message
	parts := strings.Split(line, ":")
	if len(parts) > 1 {
		errorMsg := strings.TrimSpace(parts[1])
		stats.ErrorPatterns[errorMsg]++
	}
}

func printReport(stats *LogStats) {
	fmt.Println("\n=== Log Analysis Report ===")
	fmt.Println("Generated:", time.Now().Format("2006-01-02 15:04:05"))

	fmt.Println("\n1. Settlement Statistics:")
	fmt.Printf("   Settled Orders: %d\n", stats.SettledOrders)
	fmt.Printf("   Failed Settlements: %d\n", stats.SettlementFailures)
	fmt.Printf("   Repeated Verifications: %d\n", stats.RepeatedVerification)

	fmt.Println("\n2. Security Incidents:")
	fmt.Printf("   Signature Rejections: %d\n", stats.SignatureRejections)
	fmt.Printf("   Duplicate Purchase Attempts: %d\n", stats.DuplicatePurchases)

	fmt.Println("\n3. Coupon Activity:")
	fmt.Printf("   Coupons Applied: %d\n", stats.CouponsApplied)
	fmt.Printf("   Coupons Rejected: %d\n", stats.CouponsRejected)

	fmt.Println("\n4. Sweeper Activity:")
	fmt.Printf("   Orders Expired: %d\n", stats.SweptOrders)
	fmt.Printf("   Purchases Expired: %d\n", stats.SweptPurchases)
	fmt.Printf("   Invariant Violations: %d\n", stats.InvariantViolations)

	fmt.Println("\n5. Error Statistics:")
	fmt.Printf("   Total Errors: %d\n", stats.TotalErrors)

	fmt.Println("\n6. Most Active Users:")
	printTopUsers(stats.UserActivities, 5)

	fmt.Println("\n7. Most Common Errors:")
	printTopErrors(stats.ErrorPatterns, 5)
}

func printTopUsers(users map[string]int, limit int) {
	type userActivity struct {
		userID string
		count  int
	}

	var activities []userActivity
	for userID, count := range users {
		activities = append(activities, userActivity{userID, count})
	}

	sort.Slice(activities, func(i, j int) bool {
		return activities[i].count > activities[j].count
	})

	for i, activity := range activities {
		if i >= limit {
			break
		}
		fmt.Printf("   user %s: %d activities\n", activity.userID, activity.count)
	}
}

func printTopErrors(errors map[string]int, limit int) {
	type errorCount struct {
		error string
		count int
	}

	var errorList []errorCount
	for err, count := range errors {
		errorList = append(errorList, errorCount{err, count})
	}

	sort.Slice(errorList, func(i, j int) bool {
		return errorList[i].count > errorList[j].count
	})

	for i, err := range errorList {
		if i >= limit {
			break
		}
		fmt.Printf("   %s: %d occurrences\n", err.error, err.count)
	}
}
