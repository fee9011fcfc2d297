package utils

import "testing"

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("demo1234")
	if err != nil {
		t.Fatalf("failed hashing password: %v", err)
	}
	if hash == "demo1234" {
		t.Fatal("hash must not equal the plaintext")
	}

	if !CheckPassword("demo1234", hash) {
		t.Error("the original password must verify")
	}
	if CheckPassword("wrong", hash) {
		t.Error("a wrong password must not verify")
	}
	if CheckPassword("demo1234", "not-a-hash") {
		t.Error("a malformed hash must not verify")
	}
}
