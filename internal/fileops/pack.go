package fileops

import (
	"crypto/rand"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/shaggyze/itpack/internal/archive"
	"github.com/shaggyze/itpack/internal/cipher"
	itperrors "github.com/shaggyze/itpack/internal/errors"
	"github.com/shaggyze/itpack/internal/keyderiv"
	"github.com/shaggyze/itpack/internal/payload"
	"github.com/shaggyze/itpack/internal/util"
)

// PackOptions configures archive creation.
type PackOptions struct {
	Files      []string          // file paths under RootDir to include (see Scan)
	RootDir    string            // root used to compute each entry's relative name
	OutputPath string            // path of the .it file to create
	Salt       string            // salt string the resulting archive is keyed with
	Extensions payload.Extensions // which file extensions get compressed; nil = no compression
	Overwrite  bool              // if false, Pack refuses to replace an existing OutputPath
	Progress   ProgressFunc
	Status     StatusFunc
	Cancel     CancelFunc
}

type pendingEntry struct {
	name    string
	content []byte // post-compression bytes, pre-encryption
	flags   uint32
	key2    [16]byte
	origLen uint32
}

// Pack builds a .it archive from opts.Files. Every entry is written
// fully encrypted (Pack never produces head-encrypted-only entries —
// that mode exists for archives this tool reads but did not create).
// On any error the partially written output file is removed.
func Pack(opts PackOptions) (retErr error) {
	name := filepath.Base(opts.OutputPath)

	pending := make([]pendingEntry, 0, len(opts.Files))
	var totalSize int64
	for _, path := range opts.Files {
		if opts.Cancel != nil && opts.Cancel() {
			return fmt.Errorf("pack: %w", itperrors.ErrCancelled)
		}

		content, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return fmt.Errorf("pack: %w", itperrors.NewFileError("read", path, itperrors.ErrFileNotFound))
			}
			return fmt.Errorf("pack: %w", itperrors.NewFileError("read", path, err))
		}

		rel, err := filepath.Rel(opts.RootDir, path)
		if err != nil {
			return fmt.Errorf("pack: relative path for %s: %w", path, err)
		}
		relName := filepath.ToSlash(rel)

		var key2 [16]byte
		if _, err := rand.Read(key2[:]); err != nil {
			return fmt.Errorf("pack: generate entry key for %s: %w", relName, err)
		}

		flags := archive.FlagAllEncrypted
		stored := content
		if opts.Extensions != nil && opts.Extensions.Matches(relName) {
			compressed, err := payload.Compress(content)
			if err != nil {
				return fmt.Errorf("pack: compress %s: %w", relName, err)
			}
			flags |= archive.FlagCompressed
			stored = compressed
		}

		pending = append(pending, pendingEntry{
			name:    relName,
			content: stored,
			flags:   flags,
			key2:    key2,
			origLen: uint32(len(content)),
		})
		totalSize += int64(len(content))
	}

	if !opts.Overwrite {
		if _, err := os.Stat(opts.OutputPath); err == nil {
			return fmt.Errorf("pack: %w", itperrors.NewFileError("create", opts.OutputPath, itperrors.ErrFileExists))
		}
	}

	out, err := os.Create(opts.OutputPath)
	if err != nil {
		return fmt.Errorf("pack: %w", itperrors.NewFileError("create", opts.OutputPath, err))
	}
	cleanup := func() {
		_ = out.Close()
		_ = os.Remove(opts.OutputPath)
	}
	defer func() {
		if retErr != nil {
			cleanup()
		}
	}()

	entries := make([]archive.Entry, len(pending))
	var block uint32
	for i, p := range pending {
		e := archive.NewEntry(p.name, p.flags, block, p.origLen, uint32(len(p.content)), p.key2)
		entries[i] = e
		block += blocksFor(len(p.content))
	}

	headerOffset := keyderiv.HeaderOffset(name)
	entriesOffset := headerOffset + keyderiv.EntriesOffset(name)

	if err := writeZeroPadding(out, 0, int64(headerOffset)); err != nil {
		return err
	}

	headerKey := keyderiv.HeaderKey(name, opts.Salt)
	headerEnc, err := cipher.NewEncoder(headerKey, out)
	if err != nil {
		return fmt.Errorf("pack: header cipher: %w", err)
	}
	hdr := archive.NewHeader(archive.CurrentVersion, uint32(len(entries)))
	if err := archive.WriteHeader(headerEnc, hdr); err != nil {
		return fmt.Errorf("pack: write header: %w", err)
	}
	if err := headerEnc.Close(); err != nil {
		return fmt.Errorf("pack: flush header: %w", err)
	}

	// The encoder zero-pads the 9-byte header to a whole word, so pad
	// from the real file position rather than headerOffset+HeaderSize.
	headerEnd, err := out.Seek(0, io.SeekCurrent)
	if err != nil {
		return fmt.Errorf("pack: seek: %w", err)
	}
	if err := writeZeroPadding(out, headerEnd, int64(entriesOffset)); err != nil {
		return err
	}

	entriesKey := keyderiv.EntriesKey(name, opts.Salt)
	entriesEnc, err := cipher.NewEncoder(entriesKey, out)
	if err != nil {
		return fmt.Errorf("pack: entries cipher: %w", err)
	}
	if err := archive.WriteEntries(entriesEnc, entries); err != nil {
		return fmt.Errorf("pack: write entries: %w", err)
	}
	if err := entriesEnc.Close(); err != nil {
		return fmt.Errorf("pack: flush entries: %w", err)
	}

	pos, err := out.Seek(0, io.SeekCurrent)
	if err != nil {
		return fmt.Errorf("pack: seek: %w", err)
	}
	contentStart := archive.PayloadStart(pos)
	if err := writeZeroPadding(out, pos, contentStart); err != nil {
		return err
	}

	startTime := time.Now()
	var done int64
	for i, p := range pending {
		if opts.Cancel != nil && opts.Cancel() {
			return fmt.Errorf("pack: %w", itperrors.ErrCancelled)
		}

		fileKey := keyderiv.FileKey(p.name, p.key2)
		fileEnc, err := cipher.NewEncoder(fileKey, out)
		if err != nil {
			return fmt.Errorf("pack: file cipher for %s: %w", p.name, err)
		}
		if _, err := fileEnc.Write(p.content); err != nil {
			return fmt.Errorf("pack: write %s: %w", p.name, err)
		}
		if err := fileEnc.Close(); err != nil {
			return fmt.Errorf("pack: flush %s: %w", p.name, err)
		}

		// The encoder wrote len(p.content) rounded up to a whole word.
		written := int64((len(p.content) + 3) &^ 3)
		padBytes := int64(blocksFor(len(p.content)))*archive.BlockSize - written
		if padBytes > 0 {
			if _, err := out.Write(make([]byte, padBytes)); err != nil {
				return fmt.Errorf("pack: pad %s: %w", p.name, err)
			}
		}

		done += int64(p.origLen)
		if opts.Progress != nil {
			progress, speed, eta := util.Statify(done, totalSize, startTime)
			opts.Progress(progress, fmt.Sprintf("%d/%d", i+1, len(pending)))
			if opts.Status != nil {
				opts.Status(fmt.Sprintf("Packing at %.2f MiB/s (ETA: %s)", speed, eta))
			}
		}
	}

	if err := out.Close(); err != nil {
		return fmt.Errorf("pack: %w", itperrors.NewFileError("close", opts.OutputPath, err))
	}
	return nil
}

func blocksFor(n int) uint32 {
	return uint32((n + archive.BlockSize - 1) / archive.BlockSize)
}

func writeZeroPadding(w io.Writer, from, to int64) error {
	if to <= from {
		return nil
	}
	_, err := w.Write(make([]byte, to-from))
	if err != nil {
		return fmt.Errorf("pack: write padding: %w", err)
	}
	return nil
}
