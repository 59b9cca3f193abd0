package board

import "net/url"

// Transfer records a detected host-only URL change for a board whose
// bbsId and path stayed the same — spec §3's board-transfer lifecycle event
// and scenario 6 of §8.
type Transfer struct {
	BbsID  string
	OldURL string
	NewURL string
}

// DetectTransfer compares every board in oldMenu against newMenu and reports
// boards whose host changed but whose bbsId and URL path did not — the
// heuristic spec §9 flags as capable of false positives when two networks
// reuse the same bbsId/path combination. Callers decide whether to act on a
// reported Transfer automatically or surface it for confirmation.
func DetectTransfer(oldMenu, newMenu BBSMenu) []Transfer {
	oldByBbsID := make(map[string]Board)
	for _, cat := range oldMenu.Categories {
		for _, b := range cat.Boards {
			oldByBbsID[b.BbsID] = b
		}
	}

	var transfers []Transfer
	for _, cat := range newMenu.Categories {
		for _, nb := range cat.Boards {
			ob, ok := oldByBbsID[nb.BbsID]
			if !ok || ob.URL == nb.URL {
				continue
			}
			if samePath(ob.URL, nb.URL) && differentHost(ob.URL, nb.URL) {
				transfers = append(transfers, Transfer{
					BbsID:  nb.BbsID,
					OldURL: ob.URL,
					NewURL: nb.URL,
				})
			}
		}
	}
	return transfers
}

func samePath(a, b string) bool {
	ua, errA := url.Parse(a)
	ub, errB := url.Parse(b)
	if errA != nil || errB != nil {
		return false
	}
	return ua.Path == ub.Path
}

func differentHost(a, b string) bool {
	ua, errA := url.Parse(a)
	ub, errB := url.Parse(b)
	if errA != nil || errB != nil {
		return false
	}
	return ua.Host != ub.Host
}
