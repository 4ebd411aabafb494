package leave

// ComputeBalances sums approved leave taken in asOfYear per category. Annual
// and sick balances are entitlement minus used and may go negative; unpaid and
// other only report used days.
func ComputeBalances(requests []LeaveRequest, asOfYear int) map[Category]Balance {
	used := make(map[Category]float64, len(Categories))
	for _, req := range requests {
		if req.Status != StatusApproved || req.LeaveDate.Year() != asOfYear {
			continue
		}
		used[NormalizeCategory(string(req.Category))] += req.Days
	}

	out := make(map[Category]Balance, len(Categories))
	for _, c := range Categories {
		total := Entitlements[c]
		b := Balance{Total: total, Used: used[c]}
		if total > 0 {
			b.Balance = total - b.Used
		}
		out[c] = b
	}
	return out
}
