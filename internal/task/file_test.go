package task

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tcsenpai/TG-Manager/internal/clierr"
)

const wellFormed = `{
  "meta": {
    "states": [
      {
        "name": "todo",
        "hexColor": "#ff6961",
        "icon": "📝"
      },
      {
        "name": "done",
        "hexColor": "#77dd77",
        "icon": "✅"
      }
    ]
  },
  "datas": [
    {
      "id": 0,
      "name": "Pay <rent> & bills",
      "description": "before the 5th",
      "subtasks": [
        {
          "id": 1,
          "name": "Transfer",
          "timestamp": "01/02/2024",
          "state": "done",
          "priority": 0
        }
      ],
      "timestamp": "31/01/2024",
      "state": "todo",
      "priority": 3
    }
  ]
}`

func TestDecodeEncode_RoundTrip(t *testing.T) {
	f, err := Decode([]byte(wellFormed))
	require.NoError(t, err)

	require.Len(t, f.Datas, 1)
	root := f.Datas[0]
	assert.Equal(t, "Pay <rent> & bills", root.Name)
	require.NotNil(t, root.Subtasks[0].Priority)
	assert.Equal(t, 0, *root.Subtasks[0].Priority)

	out, err := Encode(f)
	require.NoError(t, err)
	assert.Equal(t, wellFormed, string(out))
}

func TestEncode_NewFile(t *testing.T) {
	out, err := Encode(NewFile())
	require.NoError(t, err)

	f, err := Decode(out)
	require.NoError(t, err)
	assert.Empty(t, f.Datas)
	assert.Len(t, f.Meta.States, 3)
	assert.Contains(t, string(out), `"datas": []`)
}

func TestEncode_NilSlicesBecomeArrays(t *testing.T) {
	out, err := Encode(&File{})
	require.NoError(t, err)
	_, err = Decode(out)
	require.NoError(t, err)
}

func TestDecode_Corrupt(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"not json", `{{`},
		{"array root", `[]`},
		{"missing meta", `{"datas": []}`},
		{"meta null", `{"meta": null, "datas": []}`},
		{"states not array", `{"meta": {"states": {}}, "datas": []}`},
		{"missing states", `{"meta": {}, "datas": []}`},
		{"missing datas", `{"meta": {"states": []}}`},
		{"datas object", `{"meta": {"states": []}, "datas": {}}`},
		{"task wrong type", `{"meta": {"states": []}, "datas": [{"id": "x"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.input))
			require.Error(t, err)
			assert.True(t, clierr.Is(err, clierr.CorruptStorage), "got %v", err)
		})
	}
}

func TestDecode_ToleratesSparseTasks(t *testing.T) {
	f, err := Decode([]byte(`{"meta":{"states":[]},"datas":[{"id":2},{"id":3,"subtasks":[]}]}`))
	require.NoError(t, err)
	require.Len(t, f.Datas, 2)
	assert.Empty(t, f.Datas[0].Name)
	assert.Empty(t, f.Datas[1].Subtasks)
}

const storedByOtherClient = `{
  "meta": {
    "states": [
      {
        "name": "todo",
        "hexColor": "#ff6961",
        "icon": "📝"
      }
    ],
    "theme": "dark"
  },
  "datas": [
    {
      "id": 0,
      "name": "a",
      "description": "",
      "subtasks": [],
      "timestamp": "31/01/2024",
      "state": "todo",
      "pinned": true,
      "tags": [
        "x"
      ]
    },
    {
      "name": "b",
      "id": 1,
      "priority": null
    }
  ],
  "version": 2
}`

func TestDecodeEncode_KeepsStoredShape(t *testing.T) {
	f, err := Decode([]byte(storedByOtherClient))
	require.NoError(t, err)
	require.Len(t, f.Datas, 2)
	assert.Empty(t, f.Datas[0].Description)
	assert.Empty(t, f.Datas[0].Subtasks)
	assert.Nil(t, f.Datas[1].Priority)

	out, err := Encode(f)
	require.NoError(t, err)
	assert.Equal(t, storedByOtherClient, string(out))
}

func TestEncode_EditedTaskKeepsUnknownKeys(t *testing.T) {
	f, err := Decode([]byte(storedByOtherClient))
	require.NoError(t, err)

	a := f.Datas[0]
	a.Description = "now set"
	a.Priority = new(int)
	f.Datas[1].Priority = nil
	f.Datas[1].Name = ""

	out, err := Encode(f)
	require.NoError(t, err)
	s := string(out)
	assert.Contains(t, s, `"description": "now set",
      "subtasks": [],`)
	assert.Contains(t, s, `"pinned": true,`)
	assert.Contains(t, s, `"priority": 0`)
	assert.Contains(t, s, `{
      "name": "",
      "id": 1,
      "priority": null
    }`)
	assert.Contains(t, s, `"version": 2`)
	assert.Contains(t, s, `"theme": "dark"`)

	again, err := Decode(out)
	require.NoError(t, err)
	require.NotNil(t, again.Datas[0].Priority)
	assert.Equal(t, 0, *again.Datas[0].Priority)
}

func TestDecode_CanonicalTasksCarryNoLayout(t *testing.T) {
	f, err := Decode([]byte(wellFormed))
	require.NoError(t, err)

	want := &Task{ID: 1, Name: "Transfer", Timestamp: "01/02/2024", State: "done", Priority: new(int)}
	assert.Equal(t, want, f.Datas[0].Subtasks[0])
}

func TestDecode_AssignsMissingIDs(t *testing.T) {
	doc := `{"meta":{"states":[]},"datas":[` +
		`{"id":0,"name":"a"},` +
		`{"name":"b","subtasks":[{"name":"c"},{"id":1,"name":"d"}]},` +
		`{"id":null,"name":"e"}]}`

	f, err := Decode([]byte(doc))
	require.NoError(t, err)

	var ids []int
	Walk(f.Datas, func(tk *Task, _ []int) bool {
		ids = append(ids, tk.ID)
		return true
	})
	assert.Equal(t, []int{0, 2, 3, 1, 4}, ids)

	out, err := Encode(f)
	require.NoError(t, err)
	assert.Contains(t, string(out), `{
      "id": 2,
      "name": "b",`)
	assert.Contains(t, string(out), `{
      "id": 4,
      "name": "e"
    }`)

	again, err := Decode(out)
	require.NoError(t, err)
	assert.Equal(t, f.Datas[1].Subtasks[0].ID, again.Datas[1].Subtasks[0].ID)
}
