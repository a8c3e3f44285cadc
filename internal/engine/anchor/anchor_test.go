package anchor

import "testing"

func TestHashesAreDeterministic(t *testing.T) {
	payload := `{"instructions":[{"program":"spl-token","op":"transfer"}]}`
	wallet := "9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM"

	payloadHash := PayloadHash(payload)
	if payloadHash != PayloadHash(payload) {
		t.Error("PayloadHash not stable")
	}
	if len(payloadHash) != 64 {
		t.Errorf("Expected 64 hex chars, got %d", len(payloadHash))
	}

	txHash := TxHash402(wallet, payloadHash)
	if txHash != TxHash402(wallet, payloadHash) {
		t.Error("TxHash402 not stable")
	}
	if txHash == payloadHash {
		t.Error("Tx hash must be domain separated from the payload hash")
	}
	if TxHash402("other-wallet", payloadHash) == txHash {
		t.Error("Tx hash must bind the wallet")
	}

	if MockSignature(txHash) != MockSignature(txHash) {
		t.Error("MockSignature not stable")
	}
}

func TestDerivePDA(t *testing.T) {
	pda := DerivePDA("abc123", "Hash402ProgramXXXXXXXXXXXXXXXXXXXXXXXXXXX")
	if len(pda) != 44 {
		t.Errorf("Expected 44-char address, got %d", len(pda))
	}
	if pda != DerivePDA("abc123", "Hash402ProgramXXXXXXXXXXXXXXXXXXXXXXXXXXX") {
		t.Error("DerivePDA not stable")
	}
	if pda == DerivePDA("abc123", "other-program") {
		t.Error("PDA must bind the program")
	}
}

func TestMockSlot(t *testing.T) {
	slot := MockSlot()
	if slot < 265019392 || slot >= 265019392+10000 {
		t.Errorf("Slot out of range: %d", slot)
	}
}

func TestScoreRisk(t *testing.T) {
	cases := []struct {
		name     string
		hash     string
		level    string
		decision string
	}{
		{"low", string([]byte{10, 'f'}), RiskLow, DecisionAllow},
		{"medium", string([]byte{40, 'f'}), RiskMedium, DecisionAllow},
		{"high", string([]byte{99, 'f'}), RiskHigh, DecisionDeny},
		{"empty", "", RiskLow, DecisionAllow},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			risk := ScoreRisk(tc.hash)
			if risk.Level != tc.level {
				t.Errorf("Level = %s, want %s", risk.Level, tc.level)
			}
			if risk.Decision != tc.decision {
				t.Errorf("Decision = %s, want %s", risk.Decision, tc.decision)
			}
			if risk.Score < 0 || risk.Score > 1 {
				t.Errorf("Score out of range: %f", risk.Score)
			}
		})
	}
}
