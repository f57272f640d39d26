// Package loader resolves contract module factories into a partitioned result
// set.
//
// A source map pairs a key (usually a file path such as
// "contracts/token.hcl") with a factory. Each key is reduced to a contract
// identifier, its factory is invoked once, and the resolved value is checked
// for the contract.Module shape. Successful modules land in Result.Loaded;
// everything else lands in Result.Failed with a readable message. One broken
// module never prevents the others from loading.
//
// Factories may be synchronous functions, functions returning a Deferred, or
// values implementing Factory. See LoadModules for the exact set.
package loader
