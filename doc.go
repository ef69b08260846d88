/*
Package subst resolves ${command:path} placeholder expressions embedded in
arbitrary text against pluggable value providers and substitutes the
resolved values back in, producing a fully interpolated string. It is meant
for injecting runtime secrets and configuration into text artifacts
(config files, command templates) without a full scripting language.

A placeholder names a command, hands it a path, and may select a field of
a structured result or supply a fallback:

	${env:HOME}
	${sh:hostname -s}
	${vault:secret/db#password}
	${env:PORT:-8080}
	$${env:HOME}    <- escaped, collapses to the literal ${env:HOME}

Commands are supplied by the caller through a Registry. Resolution runs
repeated scan passes until no resolvable placeholder remains, so
placeholders may nest: ${env:VAR_${env:VAR_1}} resolves the inner
expression first. Interpolation never fails at runtime; anything that
cannot be resolved degrades to the placeholder's default value or the
empty string.

	registry := subst.NewRegistry()
	registry.Register("env", commands.NewEnv())
	registry.Register("sh", commands.NewShell())

	resolver, err := subst.NewResolver(subst.ResolverInput{Registry: registry})
	if err != nil {
		log.Fatal(err)
	}
	out := resolver.Interpolate(ctx, "listen ${env:ADDR:-0.0.0.0}:${env:PORT:-8080}")

Ready-made providers for environment variables, shell commands, files,
Vault secrets, Consul KV and network addresses live in the commands
subpackage.
*/
package subst
