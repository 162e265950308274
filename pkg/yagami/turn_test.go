package yagami

import "testing"

func TestRoleValidate(t *testing.T) {
	tests := []struct {
		name    string
		role    Role
		wantErr bool
	}{
		{name: "system", role: RoleSystem},
		{name: "user", role: RoleUser},
		{name: "assistant", role: RoleAssistant},
		{name: "empty", role: Role(""), wantErr: true},
		{name: "unknown", role: Role("tool"), wantErr: true},
	}

	for _, testCase := range tests {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			err := testCase.role.Validate()
			if testCase.wantErr && err == nil {
				t.Fatal("expected validation error")
			}
			if !testCase.wantErr && err != nil {
				t.Fatalf("unexpected validation error: %v", err)
			}
		})
	}
}

func TestTurnValidate(t *testing.T) {
	tests := []struct {
		name    string
		turn    Turn
		wantErr bool
	}{
		{name: "valid user turn", turn: UserTurn("hello")},
		{name: "valid assistant turn", turn: AssistantTurn("hi")},
		{name: "valid system turn", turn: SystemTurn("persona")},
		{name: "missing content", turn: Turn{Role: RoleUser}, wantErr: true},
		{name: "whitespace content", turn: Turn{Role: RoleUser, Content: "   "}, wantErr: true},
		{name: "missing role", turn: Turn{Content: "hello"}, wantErr: true},
	}

	for _, testCase := range tests {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			err := testCase.turn.Validate()
			if testCase.wantErr && err == nil {
				t.Fatal("expected validation error")
			}
			if !testCase.wantErr && err != nil {
				t.Fatalf("unexpected validation error: %v", err)
			}
		})
	}
}

func TestCloneTurnsIndependence(t *testing.T) {
	t.Parallel()

	original := []Turn{SystemTurn("persona"), UserTurn("hello")}
	cloned := CloneTurns(original)

	cloned[1] = UserTurn("mutated")
	if original[1].Content != "hello" {
		t.Fatalf("clone mutated the original transcript: %#v", original[1])
	}

	if CloneTurns(nil) != nil {
		t.Fatal("cloning a nil transcript should stay nil")
	}
}

func TestGenerateRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     GenerateRequest
		wantErr bool
	}{
		{
			name: "valid request",
			req: GenerateRequest{
				Model: "llama-3.1-8b-instant",
				Turns: []Turn{SystemTurn("persona"), UserTurn("hello")},
			},
		},
		{
			name:    "missing model",
			req:     GenerateRequest{Turns: []Turn{UserTurn("hello")}},
			wantErr: true,
		},
		{
			name:    "missing turns",
			req:     GenerateRequest{Model: "llama-3.1-8b-instant"},
			wantErr: true,
		},
		{
			name: "invalid turn",
			req: GenerateRequest{
				Model: "llama-3.1-8b-instant",
				Turns: []Turn{{Role: RoleUser}},
			},
			wantErr: true,
		},
		{
			name: "negative max output tokens",
			req: GenerateRequest{
				Model:           "llama-3.1-8b-instant",
				Turns:           []Turn{UserTurn("hello")},
				MaxOutputTokens: -1,
			},
			wantErr: true,
		},
		{
			name: "negative temperature",
			req: GenerateRequest{
				Model:       "llama-3.1-8b-instant",
				Turns:       []Turn{UserTurn("hello")},
				Temperature: -0.1,
			},
			wantErr: true,
		},
	}

	for _, testCase := range tests {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			err := testCase.req.Validate()
			if testCase.wantErr && err == nil {
				t.Fatal("expected validation error")
			}
			if !testCase.wantErr && err != nil {
				t.Fatalf("unexpected validation error: %v", err)
			}
		})
	}
}
