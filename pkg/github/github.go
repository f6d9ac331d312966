// Package github resolves release assets through the GitHub API and
// downloads them.
package github

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/schollz/progressbar/v3"

	"github.com/LeeLiangmin/compile-rust-tool/pkg/config"
)

const defaultBaseURL = "https://api.github.com"

type Asset struct {
	Name        string `json:"name"`
	Size        int64  `json:"size"`
	DownloadURL string `json:"browser_download_url"`
}

type Release struct {
	TagName     string    `json:"tag_name"`
	PublishedAt time.Time `json:"published_at"`
	Assets      []Asset   `json:"assets"`
}

// Client talks to the GitHub releases API. BaseURL is swapped out in tests.
type Client struct {
	HTTP    *http.Client
	BaseURL string
	Token   string
}

func NewClient() *Client {
	return &Client{
		HTTP: &http.Client{
			Timeout: time.Minute * 30,
		},
		BaseURL: defaultBaseURL,
		Token:   os.Getenv("GITHUB_TOKEN"),
	}
}

func (c *Client) fetchJSON(url string, dest interface{}) error {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return eris.Wrapf(err, "Failed to build request for %s", url)
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("User-Agent", "compile-rust-tool")
	if c.Token != "" {
		req.Header.Set("Authorization", "token "+c.Token)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return eris.Wrapf(err, "Request to %s failed", url)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return eris.Errorf("Request to %s returned status %s", url, resp.Status)
	}

	err = json.NewDecoder(resp.Body).Decode(dest)
	if err != nil {
		return eris.Wrapf(err, "Failed to decode response from %s", url)
	}
	return nil
}

// Resolve picks the concrete release for a download spec according to its
// resolution method.
func (c *Client) Resolve(spec config.DownloadSpec) (*Release, error) {
	switch spec.Method {
	case "latest":
		var release Release
		err := c.fetchJSON(fmt.Sprintf("%s/repos/%s/releases/latest", c.BaseURL, spec.Repo), &release)
		if err != nil {
			return nil, eris.Wrapf(err, "No latest release found for %s", spec.Repo)
		}
		return &release, nil
	case "tag":
		var release Release
		err := c.fetchJSON(fmt.Sprintf("%s/repos/%s/releases/tags/%s", c.BaseURL, spec.Repo, spec.Tag), &release)
		if err != nil {
			return nil, eris.Wrapf(err, "No release with tag %s found for %s", spec.Tag, spec.Repo)
		}
		return &release, nil
	case "date":
		return c.resolveByDate(spec)
	}
	return nil, eris.Errorf("Unknown resolution method %q", spec.Method)
}

// resolveByDate returns the most recent release published on or before the
// spec's date. The API lists releases newest first.
func (c *Client) resolveByDate(spec config.DownloadSpec) (*Release, error) {
	limit, err := time.Parse("2006-01-02", spec.Date)
	if err != nil {
		return nil, eris.Wrapf(err, "Invalid date %q", spec.Date)
	}
	// Releases published anywhere on the limit day still count.
	limit = limit.AddDate(0, 0, 1)

	var releases []Release
	err = c.fetchJSON(fmt.Sprintf("%s/repos/%s/releases", c.BaseURL, spec.Repo), &releases)
	if err != nil {
		return nil, eris.Wrapf(err, "Failed to list releases for %s", spec.Repo)
	}

	for idx, release := range releases {
		if release.PublishedAt.Before(limit) {
			return &releases[idx], nil
		}
	}

	available := make([]string, 0, 10)
	for idx, release := range releases {
		if idx >= 10 {
			break
		}
		available = append(available, fmt.Sprintf("%s (%s)", release.TagName, release.PublishedAt.Format("2006-01-02")))
	}
	return nil, eris.Errorf("No release of %s published on or before %s. Most recent: %s",
		spec.Repo, spec.Date, strings.Join(available, ", "))
}

// FindAsset looks up the named asset in a release. The error lists the
// available assets since a rename on the release side is the usual cause.
func (r *Release) FindAsset(name string) (*Asset, error) {
	names := make([]string, 0, len(r.Assets))
	for idx, asset := range r.Assets {
		if asset.Name == name {
			return &r.Assets[idx], nil
		}
		names = append(names, asset.Name)
	}
	return nil, eris.Errorf("Release %s has no asset %s. Available: %s", r.TagName, name, strings.Join(names, ", "))
}

func getProgressBar(length int64, desc string) *progressbar.ProgressBar {
	if os.Getenv("CI") == "true" {
		return progressbar.NewOptions64(length, progressbar.OptionSetVisibility(false))
	}
	return progressbar.DefaultBytes(length, desc)
}

// Download streams the asset into outputDir, writing through a temp file so
// an interrupted download never leaves a truncated asset behind.
func (c *Client) Download(asset *Asset, outputDir string) (string, error) {
	err := os.MkdirAll(outputDir, os.FileMode(0770))
	if err != nil {
		return "", eris.Wrapf(err, "Failed to create directory %s", outputDir)
	}

	dest := filepath.Join(outputDir, asset.Name)
	tmpPath := dest + ".tmp"
	handle, err := os.Create(tmpPath)
	if err != nil {
		return "", eris.Wrapf(err, "Failed to create %s", tmpPath)
	}
	defer func() {
		handle.Close()
		os.Remove(tmpPath)
	}()

	req, err := http.NewRequest(http.MethodGet, asset.DownloadURL, nil)
	if err != nil {
		return "", eris.Wrapf(err, "Failed to build request for %s", asset.DownloadURL)
	}
	req.Header.Set("User-Agent", "compile-rust-tool")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", eris.Wrapf(err, "Failed to start download for %s", asset.DownloadURL)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", eris.Errorf("Download of %s returned status %s", asset.DownloadURL, resp.Status)
	}

	buf := make([]byte, 4096)
	bar := getProgressBar(resp.ContentLength, "     download")
	for {
		n, err := resp.Body.Read(buf)
		if err != nil && n < 1 {
			if err == io.EOF {
				break
			}
			return "", eris.Wrapf(err, "Failed during download of %s", asset.DownloadURL)
		}

		_, err = handle.Write(buf[:n])
		if err != nil {
			return "", eris.Wrapf(err, "Failed to write download to %s", tmpPath)
		}

		bar.Write(buf[:n])
	}
	bar.Finish()

	err = handle.Close()
	if err != nil {
		return "", eris.Wrapf(err, "Failed to flush %s", tmpPath)
	}

	err = os.Rename(tmpPath, dest)
	if err != nil {
		return "", eris.Wrapf(err, "Failed to move download to %s", dest)
	}
	return dest, nil
}

// Fetch resolves and downloads one spec.
func (c *Client) Fetch(spec config.DownloadSpec) (string, error) {
	release, err := c.Resolve(spec)
	if err != nil {
		return "", err
	}

	asset, err := release.FindAsset(spec.Asset)
	if err != nil {
		return "", err
	}

	return c.Download(asset, spec.OutputDir)
}
