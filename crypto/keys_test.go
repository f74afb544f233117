package crypto

import "testing"

func TestGenerateKeyPairRoundTripsPublicKey(t *testing.T) {
	sk, pk, err := GenerateKeyPair()
	if err != nil {
		t.Fatal(err)
	}
	if sk.PublicKey() != pk {
		t.Fatal("expected SecretKey.PublicKey() to match the generated public key")
	}
}

func TestKeyPairFromSeedIsDeterministic(t *testing.T) {
	var seed [SeedSize]byte
	for i := range seed {
		seed[i] = byte(i)
	}

	sk1, pk1, err := KeyPairFromSeed(seed)
	if err != nil {
		t.Fatal(err)
	}
	sk2, pk2, err := KeyPairFromSeed(seed)
	if err != nil {
		t.Fatal(err)
	}
	if sk1 != sk2 || pk1 != pk2 {
		t.Fatal("expected the same seed to derive the same keypair every time")
	}
}

func TestSignAndVerify(t *testing.T) {
	sk, pk, err := GenerateKeyPair()
	if err != nil {
		t.Fatal(err)
	}
	data := []byte("a transaction envelope")
	sig := Sign(data, sk)
	if !Verify(pk, data, sig) {
		t.Fatal("expected a freshly-created signature to verify")
	}
}

func TestVerifyRejectsTamperedData(t *testing.T) {
	sk, pk, err := GenerateKeyPair()
	if err != nil {
		t.Fatal(err)
	}
	sig := Sign([]byte("original"), sk)
	if Verify(pk, []byte("tampered"), sig) {
		t.Fatal("expected verification to fail against different data")
	}
}

func TestVerifyRejectsWrongKey(t *testing.T) {
	sk, _, err := GenerateKeyPair()
	if err != nil {
		t.Fatal(err)
	}
	_, otherPk, err := GenerateKeyPair()
	if err != nil {
		t.Fatal(err)
	}
	data := []byte("a transaction envelope")
	sig := Sign(data, sk)
	if Verify(otherPk, data, sig) {
		t.Fatal("expected verification to fail against an unrelated public key")
	}
}

func TestSecureWipeZeroesTheKey(t *testing.T) {
	sk, _, err := GenerateKeyPair()
	if err != nil {
		t.Fatal(err)
	}
	SecureWipe(&sk)
	for i, b := range sk {
		if b != 0 {
			t.Fatalf("expected every byte to be zeroed, byte %d was %d", i, b)
		}
	}
}
