package wandb

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/podcheck/podcheck/internal/domain"
)

const historyFile = "wandb-history.jsonl"

// Run is a live W&B run. It implements domain.TrackedRun.
type Run struct {
	client  *Client
	id      string
	entity  string
	project string
	started time.Time
	step    int
	done    bool
}

func (r *Run) ID() string { return r.id }

func (r *Run) fileStreamURL() string {
	return fmt.Sprintf("%s/files/%s/%s/%s/file_stream",
		r.client.baseURL, url.PathEscape(r.entity), url.PathEscape(r.project), url.PathEscape(r.id))
}

// LogMetrics appends one history row.
func (r *Run) LogMetrics(ctx context.Context, metrics map[string]float64) error {
	if r.done {
		return errors.New("log metrics: run already finished")
	}

	now := r.client.now()
	row := make(map[string]any, len(metrics)+3)
	for k, v := range metrics {
		row[k] = v
	}
	row["_step"] = r.step
	row["_runtime"] = now.Sub(r.started).Seconds()
	row["_timestamp"] = float64(now.UnixNano()) / 1e9

	line, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("log metrics: encoding row: %w", err)
	}

	payload := map[string]any{
		"files": map[string]any{
			historyFile: map[string]any{
				"offset":  r.step,
				"content": []string{string(line)},
			},
		},
	}
	if err := r.postStream(ctx, payload); err != nil {
		return fmt.Errorf("log metrics: %w", err)
	}
	r.step++
	return nil
}

// Finish marks the run complete with exit code 0.
func (r *Run) Finish(ctx context.Context) error {
	if r.done {
		return nil
	}
	if err := r.postStream(ctx, map[string]any{"complete": true, "exitcode": 0}); err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	r.done = true
	return nil
}

func (r *Run) postStream(ctx context.Context, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = r.client.do(ctx, http.MethodPost, r.fileStreamURL(), "application/json", body)
	return err
}

const createArtifactMutation = `mutation CreateArtifact($entityName: String!, $projectName: String!, $runName: String, $artifactTypeName: String!, $artifactCollectionName: String!, $digest: String!, $clientID: ID!) {
  createArtifact(input: {entityName: $entityName, projectName: $projectName, runName: $runName, artifactTypeName: $artifactTypeName, artifactCollectionNames: [$artifactCollectionName], digest: $digest, digestAlgorithm: MANIFEST_MD5, clientID: $clientID, sequenceClientID: $clientID}) {
    artifact {
      id
      state
    }
  }
}`

const createArtifactManifestMutation = `mutation CreateArtifactManifest($name: String!, $digest: String!, $artifactID: ID!, $baseArtifactID: ID, $entityName: String!, $projectName: String!, $runName: String!) {
  createArtifactManifest(input: {name: $name, digest: $digest, artifactID: $artifactID, baseArtifactID: $baseArtifactID, entityName: $entityName, projectName: $projectName, runName: $runName, type: FULL}) {
    artifactManifest {
      id
      file {
        id
        name
        uploadUrl
        uploadHeaders
      }
    }
  }
}`

const createArtifactFilesMutation = `mutation CreateArtifactFiles($artifactFiles: [CreateArtifactFileSpecInput!]!) {
  createArtifactFiles(input: {artifactFiles: $artifactFiles, storageLayout: V2}) {
    files {
      edges {
        node {
          name
          uploadUrl
          uploadHeaders
        }
      }
    }
  }
}`

const commitArtifactMutation = `mutation CommitArtifact($artifactID: ID!) {
  commitArtifact(input: {artifactID: $artifactID}) {
    artifact {
      id
      digest
    }
  }
}`

const (
	manifestFileName = "wandb_manifest.json"
	manifestHeader   = "wandb-artifact-manifest-v1\n"
)

type artifactFile struct {
	name string
	md5  string
	data []byte
}

// manifest is the v1 artifact manifest stored next to the files.
type manifest struct {
	Version             int                      `json:"version"`
	StoragePolicy       string                   `json:"storagePolicy"`
	StoragePolicyConfig map[string]string        `json:"storagePolicyConfig"`
	Contents            map[string]manifestEntry `json:"contents"`
}

type manifestEntry struct {
	Digest string `json:"digest"`
	Size   int    `json:"size"`
}

// LogArtifact creates the artifact and its manifest, uploads the files and
// the manifest, then commits. The server refuses a commit without a manifest.
func (r *Run) LogArtifact(ctx context.Context, artifact domain.Artifact) error {
	if len(artifact.Files) == 0 {
		return errors.New("log artifact: no files")
	}

	files, digest, err := readArtifactFiles(artifact.Files)
	if err != nil {
		return fmt.Errorf("log artifact: %w", err)
	}
	manifestFile, err := buildManifest(files)
	if err != nil {
		return fmt.Errorf("log artifact: %w", err)
	}

	var created struct {
		CreateArtifact *struct {
			Artifact *struct {
				ID    string `json:"id"`
				State string `json:"state"`
			} `json:"artifact"`
		} `json:"createArtifact"`
	}
	vars := map[string]any{
		"entityName":             r.entity,
		"projectName":            r.project,
		"runName":                r.id,
		"artifactTypeName":       artifact.Type,
		"artifactCollectionName": artifact.Name,
		"digest":                 digest,
		"clientID":               uuid.NewString(),
	}
	if err := r.client.graphql(ctx, createArtifactMutation, vars, &created); err != nil {
		return fmt.Errorf("log artifact: create: %w", err)
	}
	if created.CreateArtifact == nil || created.CreateArtifact.Artifact == nil {
		return errors.New("log artifact: server returned no artifact")
	}
	artifactID := created.CreateArtifact.Artifact.ID

	var createdManifest struct {
		CreateArtifactManifest *struct {
			ArtifactManifest *struct {
				ID   string     `json:"id"`
				File uploadSlot `json:"file"`
			} `json:"artifactManifest"`
		} `json:"createArtifactManifest"`
	}
	manifestVars := map[string]any{
		"name":           manifestFileName,
		"digest":         manifestFile.md5,
		"artifactID":     artifactID,
		"baseArtifactID": nil,
		"entityName":     r.entity,
		"projectName":    r.project,
		"runName":        r.id,
	}
	if err := r.client.graphql(ctx, createArtifactManifestMutation, manifestVars, &createdManifest); err != nil {
		return fmt.Errorf("log artifact: create manifest: %w", err)
	}
	if createdManifest.CreateArtifactManifest == nil || createdManifest.CreateArtifactManifest.ArtifactManifest == nil {
		return errors.New("log artifact: server returned no manifest")
	}
	manifestID := createdManifest.CreateArtifactManifest.ArtifactManifest.ID
	manifestSlot := createdManifest.CreateArtifactManifest.ArtifactManifest.File
	if manifestSlot.UploadURL == "" {
		return errors.New("log artifact: server returned no manifest upload url")
	}

	specs := make([]map[string]any, 0, len(files))
	for _, f := range files {
		specs = append(specs, map[string]any{
			"artifactID":         artifactID,
			"artifactManifestID": manifestID,
			"name":               f.name,
			"md5":                f.md5,
		})
	}
	var uploads struct {
		CreateArtifactFiles *struct {
			Files struct {
				Edges []struct {
					Node uploadSlot `json:"node"`
				} `json:"edges"`
			} `json:"files"`
		} `json:"createArtifactFiles"`
	}
	if err := r.client.graphql(ctx, createArtifactFilesMutation, map[string]any{"artifactFiles": specs}, &uploads); err != nil {
		return fmt.Errorf("log artifact: request upload urls: %w", err)
	}
	if uploads.CreateArtifactFiles == nil {
		return errors.New("log artifact: server returned no upload urls")
	}

	byName := make(map[string]artifactFile, len(files))
	for _, f := range files {
		byName[f.name] = f
	}
	for _, edge := range uploads.CreateArtifactFiles.Files.Edges {
		// An empty upload URL means the server already holds this content.
		if edge.Node.UploadURL == "" {
			continue
		}
		f, ok := byName[edge.Node.Name]
		if !ok {
			return fmt.Errorf("log artifact: server asked for unknown file %q", edge.Node.Name)
		}
		if err := r.upload(ctx, edge.Node, f); err != nil {
			return fmt.Errorf("log artifact: upload %s: %w", f.name, err)
		}
	}

	if err := r.upload(ctx, manifestSlot, manifestFile); err != nil {
		return fmt.Errorf("log artifact: upload manifest: %w", err)
	}

	if err := r.client.graphql(ctx, commitArtifactMutation, map[string]any{"artifactID": artifactID}, nil); err != nil {
		return fmt.Errorf("log artifact: commit: %w", err)
	}
	r.client.log.Debug().Str("artifact", artifact.Name).Str("id", artifactID).Msg("artifact committed")
	return nil
}

// uploadSlot is a pre-signed destination returned by the API.
type uploadSlot struct {
	Name          string   `json:"name"`
	UploadURL     string   `json:"uploadUrl"`
	UploadHeaders []string `json:"uploadHeaders"`
}

// upload PUTs file content to a pre-signed URL. The URL carries its own
// credentials, so no basic auth is sent.
func (r *Run) upload(ctx context.Context, slot uploadSlot, f artifactFile) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, slot.UploadURL, bytes.NewReader(f.data))
	if err != nil {
		return err
	}
	for _, h := range slot.UploadHeaders {
		// Headers arrive as "Name:value".
		if k, v, ok := strings.Cut(h, ":"); ok {
			req.Header.Set(k, v)
		}
	}
	req.Header.Set("Content-MD5", f.md5)
	req.ContentLength = int64(len(f.data))

	resp, err := r.client.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	return nil
}

// buildManifest renders the manifest JSON for files as an uploadable file.
func buildManifest(files []artifactFile) (artifactFile, error) {
	m := manifest{
		Version:             1,
		StoragePolicy:       "wandb-storage-policy-v1",
		StoragePolicyConfig: map[string]string{"storageLayout": "V2"},
		Contents:            make(map[string]manifestEntry, len(files)),
	}
	for _, f := range files {
		m.Contents[f.name] = manifestEntry{Digest: f.md5, Size: len(f.data)}
	}
	data, err := json.Marshal(m)
	if err != nil {
		return artifactFile{}, fmt.Errorf("encoding manifest: %w", err)
	}
	sum := md5.Sum(data)
	return artifactFile{
		name: manifestFileName,
		md5:  base64.StdEncoding.EncodeToString(sum[:]),
		data: data,
	}, nil
}

// readArtifactFiles loads each file and computes the artifact digest: the
// hex md5 of the manifest header followed by the sorted "name:md5" lines.
func readArtifactFiles(paths []string) ([]artifactFile, string, error) {
	files := make([]artifactFile, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, "", fmt.Errorf("reading %s: %w", p, err)
		}
		sum := md5.Sum(data)
		files = append(files, artifactFile{
			name: filepath.Base(p),
			md5:  base64.StdEncoding.EncodeToString(sum[:]),
			data: data,
		})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].name < files[j].name })

	h := md5.New()
	_, _ = io.WriteString(h, manifestHeader)
	for _, f := range files {
		fmt.Fprintf(h, "%s:%s\n", f.name, f.md5)
	}
	return files, hex.EncodeToString(h.Sum(nil)), nil
}
