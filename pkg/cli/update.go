package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/blang/semver"
	"github.com/rhysd/go-github-selfupdate/selfupdate"
)

const updateRepo = "Fepozopo/imfx"

// releaseTagRe matches a semver substring such as v1.2.3 or 1.2.3-rc.1
// inside a release tag or name.
var releaseTagRe = regexp.MustCompile(`v?\d+\.\d+\.\d+(-[0-9A-Za-z.-]+)?(\+[0-9A-Za-z.-]+)?`)

// detectLatestRelease queries the GitHub Releases API and returns the
// highest published, non-prerelease release whose tag carries a semver.
// It returns (nil, false, nil) when the repository has no suitable
// release.
func detectLatestRelease(repo string) (*selfupdate.Release, bool, error) {
	apiURL := fmt.Sprintf("https://api.github.com/repos/%s/releases", repo)
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(apiURL)
	if err != nil {
		return nil, false, fmt.Errorf("github API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, false, fmt.Errorf("github API returned status %d: %s", resp.StatusCode, string(body))
	}

	var releases []struct {
		TagName    string `json:"tag_name"`
		Name       string `json:"name"`
		Draft      bool   `json:"draft"`
		Prerelease bool   `json:"prerelease"`
		Assets     []struct {
			Name               string `json:"name"`
			BrowserDownloadURL string `json:"browser_download_url"`
		} `json:"assets"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&releases); err != nil {
		return nil, false, fmt.Errorf("failed to decode github releases: %w", err)
	}

	type candidate struct {
		ver      semver.Version
		assetURL string
	}
	var candidates []candidate

	for _, r := range releases {
		if r.Draft || r.Prerelease {
			continue
		}
		match := releaseTagRe.FindString(r.TagName)
		if match == "" {
			match = releaseTagRe.FindString(r.Name)
			if match == "" {
				continue
			}
		}
		v, perr := semver.Parse(strings.TrimPrefix(match, "v"))
		if perr != nil {
			continue
		}

		// Prefer assets that look like platform binaries; otherwise
		// take the first one.
		assetURL := ""
		for _, a := range r.Assets {
			lower := strings.ToLower(a.Name)
			if strings.Contains(lower, "darwin") || strings.Contains(lower, "linux") ||
				strings.Contains(lower, "windows") || strings.Contains(lower, "amd64") ||
				strings.Contains(lower, "arm64") {
				assetURL = a.BrowserDownloadURL
				break
			}
			if assetURL == "" {
				assetURL = a.BrowserDownloadURL
			}
		}
		candidates = append(candidates, candidate{ver: v, assetURL: assetURL})
	}

	if len(candidates) == 0 {
		return nil, false, nil
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].ver.GT(candidates[j].ver)
	})
	best := candidates[0]
	return &selfupdate.Release{Version: best.ver, AssetURL: best.assetURL}, true, nil
}

// CheckForUpdates compares the running version against the newest
// GitHub release and, after confirmation, replaces the binary in place.
// The user restarts manually; the process is not re-executed.
func CheckForUpdates(current string) error {
	fmt.Printf("Current version: %s\n", current)

	latest, found, err := detectLatestRelease(updateRepo)
	if err != nil {
		return fmt.Errorf("update check failed: %w", err)
	}
	if !found || latest == nil {
		fmt.Printf("No releases found for %s.\n", updateRepo)
		return nil
	}
	fmt.Printf("Latest version: %s\n", latest.Version)

	currentVer, perr := semver.Parse(strings.TrimPrefix(current, "v"))
	if perr != nil {
		fmt.Printf("warning: could not parse current version %q: %v\n", current, perr)
	} else if !latest.Version.GT(currentVer) {
		fmt.Printf("You are already running the latest version: %s.\n", currentVer)
		return nil
	}

	if latest.AssetURL == "" {
		fmt.Printf("A new version (%s) is available but has no downloadable asset.\n", latest.Version)
		fmt.Println("Please visit the project releases page to download it.")
		return nil
	}

	answer, err := PromptLine(fmt.Sprintf("A new version (%s) is available. Update now? (y/N): ", latest.Version))
	if err != nil {
		return fmt.Errorf("failed reading input: %w", err)
	}
	answer = strings.ToLower(answer)
	if answer != "y" && answer != "yes" {
		fmt.Println("Update cancelled.")
		return nil
	}

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("could not locate executable: %w", err)
	}
	fmt.Println("Updating...")
	if err := selfupdate.UpdateTo(latest.AssetURL, exe); err != nil {
		return fmt.Errorf("update failed: %w", err)
	}
	fmt.Printf("Updated to version %s. Restart imfx to use it.\n", latest.Version)
	return nil
}
