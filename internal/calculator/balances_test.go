package calculator

import (
	"testing"

	"github.com/mmynk/splitledger/internal/models"
)

func settled(payer, total string, shares models.ShareMap) *models.Expense {
	return &models.Expense{
		PayerID: payer,
		Total:   d(total),
		Shares:  shares,
		State:   models.StateSettled,
	}
}

func TestNetPositions(t *testing.T) {
	expenses := []*models.Expense{
		settled("U1", "300", models.ShareMap{"U1": d("100"), "U2": d("100"), "U3": d("100")}),
		settled("U2", "100", models.ShareMap{"U1": d("60"), "U2": d("40")}),
		{
			PayerID: "U3",
			Total:   d("50"),
			Shares:  models.ShareMap{"U1": d("50")},
			State:   models.StateSharesFinalized,
		},
	}

	positions := NetPositions(expenses)

	want := map[string]string{
		"U1": "140",  // paid 300, owes 160
		"U2": "-40",  // paid 100, owes 140
		"U3": "-100", // unsettled expense ignored
	}
	for user, net := range want {
		pos, ok := positions[user]
		if !ok {
			t.Fatalf("missing position for %s", user)
		}
		if !pos.Net.Equal(d(net)) {
			t.Errorf("%s net = %s, want %s", user, pos.Net, net)
		}
	}

	if !positions["U1"].TotalPaid.Equal(d("300")) {
		t.Errorf("U1 paid = %s, want 300", positions["U1"].TotalPaid)
	}
	if !positions["U2"].TotalOwed.Equal(d("140")) {
		t.Errorf("U2 owed = %s, want 140", positions["U2"].TotalOwed)
	}
}

func TestNetPositions_Empty(t *testing.T) {
	if got := NetPositions(nil); len(got) != 0 {
		t.Errorf("NetPositions(nil) = %v, want empty", got)
	}
}
