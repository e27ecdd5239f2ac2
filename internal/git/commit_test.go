package git

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/JonathanRyzowy/maintenance-release-operator/internal/execx"
	"github.com/JonathanRyzowy/maintenance-release-operator/internal/execx/execxtest"
)

func TestParseCommits(t *testing.T) {
	raw := strings.Join([]string{"aaaaaaaa", "aaaaaaa", "feat: add check", "Ana", "1700000000"}, fieldSeparator) +
		commitSeparator + "\n" +
		strings.Join([]string{"bbbbbbbb", "bbbbbbb", "fix: typo", "Bo", "not-a-number"}, fieldSeparator) +
		commitSeparator + "\n" +
		"garbage-without-fields" + commitSeparator

	commits := parseCommits(raw)
	if len(commits) != 2 {
		t.Fatalf("parseCommits() returned %d commits, want 2", len(commits))
	}
	if commits[0].Subject != "feat: add check" || commits[0].Author != "Ana" {
		t.Errorf("first commit = %+v", commits[0])
	}
	if commits[0].Date.Unix() != 1700000000 {
		t.Errorf("first commit date = %v", commits[0].Date)
	}
	if commits[1].Date.Unix() != 0 {
		t.Errorf("unparseable timestamp should fall back to epoch, got %v", commits[1].Date)
	}
	if parseCommits("") != nil {
		t.Error("parseCommits(\"\") should be nil")
	}
}

func TestSubjects(t *testing.T) {
	got := Subjects([]Commit{{Subject: "one"}, {Subject: ""}, {Subject: "two"}})
	want := []string{"one", "two"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Subjects() = %v, want %v", got, want)
	}
}

func TestCommitsSince_TagRange(t *testing.T) {
	dir := initRepo(t)
	runGit(t, dir, "tag", "-a", "v1.0.0", "-m", "Release v1.0.0")
	writeFile(t, dir, "a.txt", "a")
	runGit(t, dir, "add", "a.txt")
	runGit(t, dir, "commit", "-q", "-m", "feat: first after tag")
	writeFile(t, dir, "b.txt", "b")
	runGit(t, dir, "add", "b.txt")
	runGit(t, dir, "commit", "-q", "-m", "fix: second after tag")

	commits, err := New(dir, nil, "").CommitsSince(context.Background(), "v1.0.0", 10)
	if err != nil {
		t.Fatalf("CommitsSince() error: %v", err)
	}

	want := []string{"fix: second after tag", "feat: first after tag"}
	if got := Subjects(commits); !reflect.DeepEqual(got, want) {
		t.Errorf("Subjects = %v, want %v", got, want)
	}
}

func TestCommitsSince_FallsBackToRecent(t *testing.T) {
	dir := initRepo(t)
	for _, name := range []string{"a", "b", "c"} {
		writeFile(t, dir, name+".txt", name)
		runGit(t, dir, "add", name+".txt")
		runGit(t, dir, "commit", "-q", "-m", "chore: add "+name)
	}

	commits, err := New(dir, nil, "").CommitsSince(context.Background(), "v0.9.0", 2)
	if err != nil {
		t.Fatalf("CommitsSince() error: %v", err)
	}

	want := []string{"chore: add c", "chore: add b"}
	if got := Subjects(commits); !reflect.DeepEqual(got, want) {
		t.Errorf("Subjects = %v, want %v", got, want)
	}
}

func TestLog_Arguments(t *testing.T) {
	fake := execxtest.New()
	fake.On("git log --pretty=format:"+logFormat+" --no-merges --max-count=10", execx.Result{})
	client := New("/repo", fake, "")

	if _, err := client.Log(context.Background(), LogQuery{Max: 10, NoMerges: true}); err != nil {
		t.Fatalf("Log() error: %v", err)
	}
	if len(fake.Calls) != 1 || fake.Calls[0].Dir != "/repo" {
		t.Errorf("Log() should run once in the client root, calls = %+v", fake.Calls)
	}
}
