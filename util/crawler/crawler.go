// crawler 下载网页中 <img> 引用的图片到预设背景目录。
//
//	go run ./util/crawler -url https://example.com/wallpapers -dir backgrounds
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path"
	"path/filepath"
	"strings"

	"github.com/antchfx/htmlquery"

	"github.com/chaos-io/bgswap/util"
	nhttp "github.com/chaos-io/bgswap/util/http"
)

func main() {
	pageURL := flag.String("url", "", "page to crawl")
	saveDir := flag.String("dir", util.GetEnvString("BGSWAP_BACKGROUNDS_DIR", "backgrounds"), "directory to save images into")
	match := flag.String("match", "", "only keep image URLs containing this text")
	flag.Parse()

	if *pageURL == "" {
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	n, err := crawl(ctx, nhttp.NewHTTPClient(), *pageURL, *saveDir, *match)
	if err != nil {
		slog.Error("crawl failed", "url", *pageURL, "error", err)
		os.Exit(1)
	}
	slog.Info("crawl done", "saved", n, "dir", *saveDir)
}

// crawl 返回成功保存的图片数，单张失败只记录日志
func crawl(ctx context.Context, cli nhttp.IClient, pageURL, saveDir, match string) (int, error) {
	if err := os.MkdirAll(saveDir, 0o755); err != nil {
		return 0, fmt.Errorf("create dir: %w", err)
	}

	var page []byte
	if err := cli.DoHTTPRequest(ctx, &nhttp.RequestParam{
		RequestURI: pageURL,
		Method:     http.MethodGet,
		Response:   &page,
	}); err != nil {
		return 0, fmt.Errorf("fetch page: %w", err)
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return 0, fmt.Errorf("parse page url: %w", err)
	}

	urls, err := imageURLs(page, base, match)
	if err != nil {
		return 0, err
	}

	saved := 0
	for _, imgURL := range urls {
		if err := ctx.Err(); err != nil {
			return saved, err
		}
		slog.Info("downloading", "url", imgURL)
		if err := download(ctx, cli, imgURL, saveDir); err != nil {
			slog.Warn("download failed", "url", imgURL, "error", err)
			continue
		}
		saved++
	}
	return saved, nil
}

// imageURLs 提取并补全 <img> 地址，只保留支持的扩展名，去重并保持页面顺序
func imageURLs(page []byte, base *url.URL, match string) ([]string, error) {
	doc, err := htmlquery.Parse(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}
	nodes, err := htmlquery.QueryAll(doc, "//img[@src]")
	if err != nil {
		return nil, fmt.Errorf("query img: %w", err)
	}

	seen := make(map[string]bool)
	var urls []string
	for _, n := range nodes {
		raw := htmlquery.SelectAttr(n, "src")
		if match != "" && !strings.Contains(raw, match) {
			continue
		}

		u, err := url.Parse(normalizeThumbURL(raw))
		if err != nil {
			continue
		}
		full := base.ResolveReference(u)
		if !util.IsSupportedImage(path.Base(full.Path)) {
			continue
		}

		s := full.String()
		if seen[s] {
			continue
		}
		seen[s] = true
		urls = append(urls, s)
	}
	return urls, nil
}

func download(ctx context.Context, cli nhttp.IClient, imgURL, saveDir string) error {
	var data []byte
	if err := cli.DoHTTPRequest(ctx, &nhttp.RequestParam{
		RequestURI: imgURL,
		Method:     http.MethodGet,
		Response:   &data,
	}); err != nil {
		return err
	}

	if _, _, err := util.DecodeImage(data); err != nil {
		return err
	}

	u, err := url.Parse(imgURL)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(saveDir, path.Base(u.Path)), data, 0o644)
}

// normalizeThumbURL MediaWiki 缩略图地址还原为原图地址：
// /images/thumb/a/ab/Foo.png/200px-Foo.png -> /images/a/ab/Foo.png
func normalizeThumbURL(imgURL string) string {
	parts := strings.Split(imgURL, "/thumb/")
	if len(parts) != 2 {
		return imgURL
	}
	idx := strings.LastIndex(parts[1], "/")
	if idx == -1 {
		return imgURL
	}
	return parts[0] + "/" + parts[1][:idx]
}
