// Package report turns fetched attendance records into the pivot matrix used
// for exports and the per-student percentage summary. Functions here are pure:
// they never touch the store and never assume the input order.
package report
